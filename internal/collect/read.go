package collect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// readResult is the outcome of reading one structured file: either an
// object, or the reason there is none.
type readResult struct {
	Object map[string]any
	Reason Reason
	Err    error
}

func (r readResult) ok() bool {
	return r.Object != nil
}

// readObject reads path and decodes it as a JSON object. Numbers are kept as json.Number.
func readObject(afs afero.Fs, path string) readResult {
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return readResult{Reason: ReasonMissing, Err: err}
		}
		return readResult{Reason: ReasonUnreadable, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return readResult{Reason: ReasonCorrupt, Err: err}
	}
	if obj == nil {
		return readResult{Reason: ReasonCorrupt, Err: fmt.Errorf("not a JSON object")}
	}
	return readResult{Object: obj}
}
