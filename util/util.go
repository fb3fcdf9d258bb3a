package util

import (
	"encoding/json"
)

// IndentedJSON renders o for human-readable logs.
func IndentedJSON(o interface{}) string {
	b, _ := json.MarshalIndent(o, "", "  ")
	return string(b)
}
