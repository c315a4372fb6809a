package imagefs

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"agar-mic/internal/domain/entity"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

// ListImages возвращает отсортированные пути снимков в каталоге (без подкаталогов).
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, dir)
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?|[.,]\d+)`)

// ParseConcentration читает ведущее десятичное число из имени файла или подписи:
// "0.125.jpg" → 0.125, "2 mg/L" → 2, "0,5" → 0.5.
func ParseConcentration(s string) (float64, error) {
	// Путь к снимку режется до имени без расширения; подпись берётся как есть.
	base := strings.TrimSpace(s)
	if ext := filepath.Ext(base); imageExts[strings.ToLower(ext)] {
		base = strings.TrimSuffix(filepath.Base(base), ext)
	}

	m := leadingNumber.FindStringSubmatch(base)
	if m == nil {
		return 0, fmt.Errorf("%w: no concentration in %q", entity.ErrInvalidInput, s)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: bad concentration in %q", entity.ErrInvalidInput, s)
	}
	return v, nil
}

// PlateFile снимок с концентрацией, взятой из имени файла.
type PlateFile struct {
	Path          string
	Concentration float64
}

// ScanSeries перечисляет снимки каталога и разбирает концентрации из имён.
func ScanSeries(dir string) ([]PlateFile, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	files := make([]PlateFile, 0, len(paths))
	for _, p := range paths {
		c, err := ParseConcentration(p)
		if err != nil {
			return nil, err
		}
		files = append(files, PlateFile{Path: p, Concentration: c})
	}
	return files, nil
}
