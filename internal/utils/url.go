package utils

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// AppendQueryParam adds key=value to the query string of an absolute or
// relative URL. An existing parameter with the same key is replaced,
// otherwise the parameter is appended after any existing ones.
func AppendQueryParam(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if q.Has(key) {
		q.Set(key, value)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	if u.RawQuery == "" {
		u.RawQuery = pair
	} else {
		u.RawQuery += "&" + pair
	}

	return u.String(), nil
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
