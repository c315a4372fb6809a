package vision

import (
	"agar-mic/internal/domain/port"
)

// ContourSegmenter выделяет колонии как отдельные контуры.
type ContourSegmenter struct {
	params SegmenterParams
}

// GridSegmenter находит контур планшета и режет его на Rows×Cols лунок.
type GridSegmenter struct {
	params SegmenterParams
}

func NewContourSegmenter(params SegmenterParams) (*ContourSegmenter, error) {
	params.Method = MethodContour
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ContourSegmenter{params: params}, nil
}

func NewGridSegmenter(params SegmenterParams) (*GridSegmenter, error) {
	params.Method = MethodGrid
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &GridSegmenter{params: params}, nil
}

// NewSegmenter выбирает сегментатор по params.Method.
func NewSegmenter(params SegmenterParams) (port.WellSegmenter, error) {
	switch params.Method {
	case MethodGrid:
		s, err := NewGridSegmenter(params)
		if err != nil {
			return nil, err
		}
		return s, nil
	case MethodContour, "":
		s, err := NewContourSegmenter(params)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, params.Validate()
	}
}

// Highlighter рисует рамки областей поверх снимка.
type Highlighter struct {
	Thickness int
	Quality   int
}

func NewHighlighter() *Highlighter {
	return &Highlighter{Thickness: 2, Quality: 90}
}

var (
	_ port.WellSegmenter     = (*ContourSegmenter)(nil)
	_ port.WellSegmenter     = (*GridSegmenter)(nil)
	_ port.RegionHighlighter = (*Highlighter)(nil)
)
