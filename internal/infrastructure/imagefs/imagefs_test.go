package imagefs

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"agar-mic/internal/domain/entity"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1.png")
	writePNG(t, path)

	img, err := NewLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader()

	_, err := l.Load(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, entity.ErrNotFound)

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = l.Load(bad)
	require.ErrorIs(t, err, entity.ErrDecode)

	_, err = l.Decode(nil)
	require.ErrorIs(t, err, entity.ErrDecode)
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"4.png", "0.5.JPG", "notes.txt", "2.tiff", "1.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "8.png"), 0o755))

	paths, err := ListImages(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "0.5.JPG"),
		filepath.Join(dir, "1.webp"),
		filepath.Join(dir, "2.tiff"),
		filepath.Join(dir, "4.png"),
	}, paths)

	_, err = ListImages(filepath.Join(dir, "nope"))
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestParseConcentration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"0.125.jpg", 0.125},
		{"/plates/cefta/2.png", 2},
		{"2 mg/L", 2},
		{"  16", 16},
		{"0,5", 0.5},
		{".25 mg/l", 0.25},
		{"0.jpg", 0},
		{"8_plate_a.tif", 8},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseConcentration(tc.in)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-12)
		})
	}

	for _, bad := range []string{"", "plate.jpg", "mg 2", "-1"} {
		_, err := ParseConcentration(bad)
		require.ErrorIs(t, err, entity.ErrInvalidInput, bad)
	}
}

func TestScanSeries(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "1.png"))
	writePNG(t, filepath.Join(dir, "0.25.png"))

	files, err := ScanSeries(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, 0.25, files[0].Concentration)
	require.Equal(t, 1.0, files[1].Concentration)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "control.png"), []byte("x"), 0o644))
	_, err = ScanSeries(dir)
	require.ErrorIs(t, err, entity.ErrInvalidInput)
}
