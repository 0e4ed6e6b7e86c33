package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const maxBodyBytes = 1 << 20

// writeJSON escribe una respuesta JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readForm parsea el body de un POST (form o JSON plano) y lo devuelve junto al
// query. Body values tienen prioridad.
func readForm(w http.ResponseWriter, r *http.Request) (body url.Values, err error) {
	body = url.Values{}
	if r.Method != http.MethodPost {
		return body, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			return nil, err
		}
		for k, v := range m {
			switch x := v.(type) {
			case string:
				body.Set(k, x)
			case bool:
				if x {
					body.Set(k, "true")
				}
			}
		}
		return body, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

// param devuelve el valor de body si existe, si no el del query.
func param(r *http.Request, body url.Values, key string) string {
	if v := strings.TrimSpace(body.Get(key)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// redirect responde 302 o, si el cliente pidió json, {"url": ...}.
func redirect(w http.ResponseWriter, r *http.Request, body url.Values, to string) {
	if body.Get("json") == "true" {
		writeJSON(w, http.StatusOK, map[string]string{"url": to})
		return
	}
	http.Redirect(w, r, to, http.StatusFound)
}

// withQuery agrega params a u.
func withQuery(u string, kv ...string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func cookieMap(r *http.Request) map[string]string {
	cs := r.Cookies()
	out := make(map[string]string, len(cs))
	for _, c := range cs {
		if _, dup := out[c.Name]; !dup {
			out[c.Name] = c.Value
		}
	}
	return out
}
