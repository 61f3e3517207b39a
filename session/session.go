// Package session implements the request/response shapes and per-client
// state of the session server: one Session wraps one interp.Interpreter,
// giving it isolated share registrations and (in virtual-environment
// mode) an isolated upload directory, the way vippsas/sqlcode's own
// cli/cmd/config.go gives each configured DatabaseConfig its own
// connection rather than sharing one global *sql.DB.
//
// The wire protocol itself (accepting a connection, routing frames to a
// Session) is the CLI's concern (--websocket); this package only defines
// the request/response DTOs and the server-side bookkeeping they need.
package session

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	"github.com/datacode-lang/datacode/interperr"
	"github.com/datacode-lang/datacode/iofs"
	"github.com/datacode-lang/datacode/pathglue"
)

// Request is the inbound frame shape. Type is read leniently: an absent
// Type on a request carrying Code is treated as "execute" for backward
// compatibility.
type Request struct {
	Type string `json:"type"`

	// execute
	Code string `json:"code,omitempty"`

	// smb_connect
	IP        string `json:"ip,omitempty"`
	Login     string `json:"login,omitempty"`
	Password  string `json:"password,omitempty"`
	Domain    string `json:"domain,omitempty"`
	ShareName string `json:"share_name,omitempty"`

	// upload_file
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content,omitempty"`
}

// EffectiveType returns Type, defaulting to "execute" when Type is empty
// but Code is present.
func (r Request) EffectiveType() string {
	if r.Type == "" && r.Code != "" {
		return "execute"
	}
	return r.Type
}

// ExecuteResponse answers an "execute" request.
type ExecuteResponse struct {
	Success bool     `json:"success"`
	Output  []string `json:"output"`
	Error   string   `json:"error,omitempty"`
}

// ShareResponse answers "smb_connect".
type ShareResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UploadResponse answers "upload_file".
type UploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Executor is the subset of interp.Interpreter a Session drives; kept as
// an interface so this package never imports interp (the CLI wires the
// two together), matching dcexport's Globals interface for the same
// reason.
type Executor interface {
	Exec(source string) error
	CaptureOutput() []string
}

// share is one smb_connect registration. Actually dialing SMB is out of
// scope for the core, which only defines the interface; Root is populated
// by whatever local mount or virtual-environment directory the caller's
// connector resolves the (ip, share_name) pair to.
type share struct {
	id   uuid.UUID
	root string
}

// Session is one client's isolated state: its own Interpreter, its own
// share registry, and (in virtual-environment mode) its own upload
// directory.
type Session struct {
	ID uuid.UUID

	exec  Executor
	log   logrus.FieldLogger
	useVE bool
	vfs   *iofs.VirtualFS // isolated upload directory, populated only when useVE

	mu     sync.RWMutex
	shares map[string]share
}

// New wraps exec in a Session. useVE mirrors --use-ve: uploads land in an
// isolated in-memory VirtualFS rather than a real directory. The
// interpreter's getcwd() and file settings are not changed here; they come
// from the interp.Options exec was built with.
func New(exec Executor, useVE bool, log logrus.FieldLogger) (*Session, error) {
	var vfs *iofs.VirtualFS
	if useVE {
		vfs = iofs.NewVirtualFS()
	}
	return NewWithVFS(exec, vfs, log)
}

// NewWithVFS wraps exec in a Session backed by an already-constructed
// VirtualFS, so the caller can hand the same fs.FS to both the
// interpreter's file builtins (interp.Options.FS) and the session's
// upload_file handler — New alone cannot do this, since interp.New reads
// its Options.FS at construction time, before any Session exists to own
// one. vfs nil means the session is not in virtual-environment mode.
func NewWithVFS(exec Executor, vfs *iofs.VirtualFS, log logrus.FieldLogger) (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("session: generating id: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{
		ID:     id,
		exec:   exec,
		log:    log,
		useVE:  vfs != nil,
		vfs:    vfs,
		shares: map[string]share{},
	}
	return s, nil
}

// VFS returns the session's isolated upload filesystem, nil unless
// virtual-environment mode is enabled. The CLI does not call it: it builds
// the VirtualFS first and hands it to both NewWithVFS and the interpreter.
func (s *Session) VFS() *iofs.VirtualFS { return s.vfs }

// Handle dispatches one Request to the matching operation, the session
// server's only public entry point.
func (s *Session) Handle(req Request) interface{} {
	switch req.EffectiveType() {
	case "execute":
		return s.execute(req)
	case "smb_connect":
		return s.connectShare(req)
	case "upload_file":
		return s.uploadFile(req)
	default:
		return ExecuteResponse{Success: false, Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

func (s *Session) execute(req Request) ExecuteResponse {
	err := s.exec.Exec(req.Code)
	out := s.exec.CaptureOutput()
	if err != nil {
		msg := err.Error()
		if ie, ok := err.(*interperr.Error); ok {
			msg = ie.Error()
		}
		return ExecuteResponse{Success: false, Output: out, Error: msg}
	}
	return ExecuteResponse{Success: true, Output: out}
}

// connectShare registers a share under s without opening any network
// connection itself: it records the handle so ResolveShare can answer
// later lib:// lookups once something upstream (a real SMB client, or a
// test double) has mounted the share and can report its local root.
// A caller that never wires in a real connector gets share_name resolved
// to its own root (self-mount), which is enough to exercise the whole
// lib:// path end to end against a local directory in tests.
func (s *Session) connectShare(req Request) ShareResponse {
	if req.ShareName == "" {
		return ShareResponse{Success: false, Error: "share_name is required"}
	}
	id, err := uuid.NewV4()
	if err != nil {
		return ShareResponse{Success: false, Error: err.Error()}
	}
	s.mu.Lock()
	s.shares[req.ShareName] = share{id: id, root: req.ShareName}
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"share": req.ShareName, "handle": id.String()}).Info("share connected")
	return ShareResponse{Success: true, Message: fmt.Sprintf("connected %s@%s as %q", req.Login, req.IP, req.ShareName)}
}

// RegisterShareRoot lets the CLI's real SMB connector (or a test) bind a
// share name to a concrete local root, overriding the self-mount
// placeholder connectShare installs.
func (s *Session) RegisterShareRoot(shareName, root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.shares[shareName]; ok {
		sh.root = root
		s.shares[shareName] = sh
		return
	}
	s.shares[shareName] = share{root: root}
}

// ResolveShare implements pathglue.ShareResolver, so a Session can be
// passed directly as interp.Options.Resolver.
func (s *Session) ResolveShare(name string) (root string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shares[name]
	return sh.root, ok
}

var _ pathglue.ShareResolver = (*Session)(nil)

func (s *Session) uploadFile(req Request) UploadResponse {
	if !s.useVE {
		return UploadResponse{Success: false, Error: "upload_file requires the server to be started in virtual-environment mode"}
	}
	if req.Filename == "" {
		return UploadResponse{Success: false, Error: "filename is required"}
	}
	data, err := decodeUploadContent(req.Content)
	if err != nil {
		return UploadResponse{Success: false, Error: err.Error()}
	}
	s.vfs.Put(req.Filename, data)
	return UploadResponse{Success: true, Path: req.Filename}
}

// decodeUploadContent accepts content that is either raw text or a
// base64:<payload> prefix.
func decodeUploadContent(content string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(content, "base64:"); ok {
		data, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
		return data, nil
	}
	return []byte(content), nil
}
