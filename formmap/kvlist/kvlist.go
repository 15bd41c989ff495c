// Sources of form data.
package kvlist

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// A source of (key, value) pairs.
type Source interface {
	// All the keys of the source, each once.
	Keys() []string

	// The value for a key.
	//
	// If the key was provided several times, the values are joined with
	// commas, in the order in which they were provided.
	Lookup(key string) (string, bool)
}

// The type of a (key, value list) store, e.g. a parsed query string or
// urlencoded body.
//
// The order of keys is unspecified.
type KVList map[string][]string

func (list KVList) Lookup(key string) (string, bool) {
	values, ok := list[key]
	if !ok {
		return "", false
	}
	return strings.Join(values, ","), true
}

func (list KVList) Keys() []string {
	keys := make([]string, 0, len(list))
	for k := range list {
		keys = append(keys, k)
	}
	return keys
}

var _ Source = make(KVList, 0)

// Convert from `url.Values`.
func FromValues(values url.Values) KVList {
	return KVList(values)
}

// Extract the form data of a request.
//
// This parses the urlencoded body (for POST, PUT and PATCH) and the query
// string, with body values listed first.
func FromRequest(request *http.Request) (KVList, error) {
	if err := request.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form data:\n\t * %w", err)
	}
	return KVList(request.Form), nil
}

// A single (key, value) pair.
type Pair struct {
	Key   string
	Value string
}

// An ordered list of pairs.
//
// Unlike `KVList`, keys are listed in the order of their first occurrence.
type Pairs []Pair

func (pairs Pairs) Lookup(key string) (string, bool) {
	values := make([]string, 0, 1)
	for _, pair := range pairs {
		if pair.Key == key {
			values = append(values, pair.Value)
		}
	}
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ","), true
}

func (pairs Pairs) Keys() []string {
	seen := make(map[string]bool, len(pairs))
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if seen[pair.Key] {
			continue
		}
		seen[pair.Key] = true
		keys = append(keys, pair.Key)
	}
	return keys
}

var _ Source = Pairs{}

// Build pairs from alternating keys and values.
//
// Panics if `keysAndValues` has an odd length.
func Of(keysAndValues ...string) Pairs {
	if len(keysAndValues)%2 != 0 {
		panic("kvlist.Of expects an even number of arguments")
	}
	result := make(Pairs, 0, len(keysAndValues)/2) //nolint:mnd
	for i := 0; i < len(keysAndValues); i += 2 {
		result = append(result, Pair{
			Key:   keysAndValues[i],
			Value: keysAndValues[i+1],
		})
	}
	return result
}
