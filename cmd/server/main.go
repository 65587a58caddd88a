package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	tagcall "github.com/nyquen/tagcall"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type kwargJSON struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type compileResponse struct {
	Name          string      `json:"name"`
	IsSelfClosing bool        `json:"isSelfClosing"`
	Args          []any       `json:"args"`
	Kwargs        []kwargJSON `json:"kwargs"`
}

// echoCallbacks resolves variables straight out of the request's
// context map; the other three callbacks report what they were asked to
// resolve rather than performing real rendering, localization, or
// filtering — this server exists to exercise the grammar/validator/
// compiler pipeline end to end, not to host a template renderer.
func echoCallbacks(context map[string]any) tagcall.Callbacks {
	return tagcall.Callbacks{
		Variable: func(ctx any, name string) (any, error) {
			v, ok := context[name]
			if !ok {
				return nil, fmt.Errorf("undefined variable %q", name)
			}
			return v, nil
		},
		TemplateString: func(ctx any, inner string) (any, error) {
			return "TEMPLATE_RESOLVED:" + inner, nil
		},
		Translation: func(ctx any, inner string) (any, error) {
			return "TRANSLATION_RESOLVED:" + inner, nil
		},
		Filter: func(ctx any, name string, value, arg any) (any, error) {
			if arg == nil {
				return fmt.Sprintf("%s(%v, None)", name, value), nil
			}
			return fmt.Sprintf("%s(%v, %v)", name, value, arg), nil
		},
	}
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/compile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Tag     string         `json:"tag"`
			Flags   []string       `json:"flags"`
			Context map[string]any `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Tag == "" {
			writeError(w, http.StatusBadRequest, "missing field: tag")
			return
		}

		flags := make(map[string]bool, len(body.Flags))
		for _, f := range body.Flags {
			flags[f] = true
		}

		tag, err := tagcall.ParseTag(body.Tag, flags)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		call, err := tagcall.CompileTag(tag)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		if body.Context == nil {
			body.Context = map[string]any{}
		}
		args, kwargs, err := call.Invoke(body.Context, echoCallbacks(body.Context))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		resp := compileResponse{
			Name:          tag.Name.Text,
			IsSelfClosing: tag.IsSelfClosing,
			Args:          args,
			Kwargs:        make([]kwargJSON, len(kwargs)),
		}
		for i, kv := range kwargs {
			resp.Kwargs[i] = kwargJSON{Name: kv.Name, Value: kv.Value}
		}
		writeJSON(w, http.StatusOK, resp)
	})

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("tagcall server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "server error: %v\n", err)
	}
}
