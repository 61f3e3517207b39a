package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/datacode-lang/datacode/iofs"
	"github.com/datacode-lang/datacode/session"
)

// runServe implements --websocket: a long-running server exposing
// execute/smb_connect/upload_file over one request/response cycle per
// call. No websocket-capable library exists anywhere in the dependency
// pack this module was built against (see DESIGN.md), so the transport is
// a stdlib net/http JSON endpoint instead — the session.Session
// request/response contract it drives is independent of the wire
// transport carrying it.
//
// A client starts a session with POST /session (returns an id), then
// POSTs session.Request bodies to /session/{id}.
func runServe(cfg Config) error {
	addr := resolveBindAddr(cfg)

	var mu sync.Mutex
	sessions := map[string]*session.Session{}

	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var vfs *iofs.VirtualFS
		var vfsFS fs.FS
		if useVE || cfg.UseVE {
			vfs = iofs.NewVirtualFS()
			vfsFS = vfs
		}
		in := newInterpreterWithVFS(cfg, vfsFS)
		s, err := session.NewWithVFS(in, vfs, log)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		mu.Lock()
		sessions[s.ID.String()] = s
		mu.Unlock()
		writeJSON(w, map[string]string{"session_id": s.ID.String()})
	})

	mux.HandleFunc("/session/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Path[len("/session/"):]
		if _, err := uuid.FromString(id); err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}
		mu.Lock()
		s, ok := sessions[id]
		mu.Unlock()
		if !ok {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		var req session.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, s.Handle(req))
	})

	log.WithField("addr", addr).Info("datacode session server listening")
	return http.ListenAndServe(addr, mux)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// resolveBindAddr implements the address precedence: flags > env > default.
func resolveBindAddr(cfg Config) string {
	h, p := host, port
	if h == "" && p == "" {
		if env := os.Getenv("DATACODE_WS_ADDRESS"); env != "" {
			return env
		}
	}
	if h == "" {
		h = "127.0.0.1"
	}
	if p == "" {
		p = "8080"
	}
	if cfg.ListenAddr != "" && host == "" && port == "" && os.Getenv("DATACODE_WS_ADDRESS") == "" {
		return cfg.ListenAddr
	}
	return fmt.Sprintf("%s:%s", h, p)
}
