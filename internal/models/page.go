package models

// Page is the platform's paginated response envelope. Page index is 0-based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	HasNext       bool  `json:"hasNext"`
}

// PageOf builds a Page from an already-sliced content window.
func PageOf[T any](content []T, totalElements int64, page, size int) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: totalElements,
		Page:          page,
		Size:          size,
		HasNext:       int64(page+1)*int64(size) < totalElements,
	}
}
