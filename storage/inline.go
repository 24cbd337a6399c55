package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
)

// Inline keeps image bytes in the database row itself. Store and
// Delete have no side effects outside the row: the insert, update or
// delete of the row is the durable operation.
type Inline struct{}

func NewInline() *Inline { return &Inline{} }

func (i *Inline) Name() string { return "database" }

func (i *Inline) Store(data []byte, originalName string) (Locator, error) {
	if len(data) == 0 {
		return Locator{}, errors.New("empty upload")
	}
	return Locator{Data: data}, nil
}

// Resolve re-encodes the bytes as a data URI so the content can travel
// in a JSON response. The media type is sniffed from the leading bytes.
func (i *Inline) Resolve(loc Locator) (string, error) {
	if len(loc.Data) == 0 {
		return "", errors.New("locator has no data")
	}

	mime := http.DetectContentType(loc.Data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(loc.Data)), nil
}

// Delete is a no-op: removing or overwriting the row already removed
// the content.
func (i *Inline) Delete(Locator) error { return nil }
