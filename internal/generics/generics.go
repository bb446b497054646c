package generics

import "strconv"

/*
Page represents a paginated result set with metadata.

Fields:
- Page: Current page number (1-indexed)
- Size: Number of records returned for the current page
- TotalPages: Total number of pages based on TotalResults and the page size
- TotalResults: Total number of records found in the database
- Content: Slice containing the actual data records for the current page
*/
type Page[T any] struct {
	Page         int `json:"page"`
	Size         int `json:"size"`
	TotalPages   int `json:"totalPages"`
	TotalResults int `json:"totalResults"`
	Content      []T `json:"content"`
}

// NewPage wraps one page of content. pageSize is the requested size, used
// only to compute TotalPages.
func NewPage[T any](content []T, page, pageSize, totalResults int) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalResults + pageSize - 1) / pageSize
	}

	return Page[T]{
		Page:         page,
		Size:         len(content),
		TotalPages:   totalPages,
		TotalResults: totalResults,
		Content:      content,
	}
}

func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
