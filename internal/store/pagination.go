package store

import (
	"encoding/base64"
	"encoding/json"
	"math"

	"github.com/safar/shop-ledger/internal/database"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// SaleCursor points just past the last sale of a page. Order numbers are
// unique and never reused, so they are the whole key.
type SaleCursor struct {
	OrderNumber int64 `json:"order_number"`
}

func EncodeCursor(cursor SaleCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor returns a cursor before every sale when encoded is empty.
func DecodeCursor(encoded string) (SaleCursor, error) {
	var cursor SaleCursor
	if encoded == "" {
		return SaleCursor{OrderNumber: math.MaxInt64}, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, database.InvalidArgument("cursor", "is malformed")
	}

	if err := json.Unmarshal(data, &cursor); err != nil || cursor.OrderNumber <= 0 {
		return cursor, database.InvalidArgument("cursor", "is malformed")
	}
	return cursor, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, normalizeLimit(pageSize)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func newOffsetPage(items interface{}, total int64, page, pageSize int) *OffsetPage {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
