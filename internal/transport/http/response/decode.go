package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fumble-dev/hire-me/internal/domain"
)

// DecodeJSON decodes a JSON request body into dst. It rejects multiple JSON
// values in one body.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}

	// Disallow trailing data: {}{}
	if err := dec.Decode(&struct{}{}); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrInvalidJSON(err)
	}

	return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
}
