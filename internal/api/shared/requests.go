package shared

import (
	"io"
	"net/http"

	"github.com/phrazzld/scaffold-api/internal/platform/jsoncodec"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// ReadBody reads at most MaxBodyBytes from the request body.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}

// DecodeInput parses a JSON document into its generic form. Empty input
// decodes to nil so procedures can decide whether input is required.
func DecodeInput(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return jsoncodec.DecodeValue(data)
}
