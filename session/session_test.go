package session

import (
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeExecutor struct {
	lastCode string
	err      error
	output   []string
}

func (f *fakeExecutor) Exec(source string) error {
	f.lastCode = source
	return f.err
}

func (f *fakeExecutor) CaptureOutput() []string {
	out := f.output
	f.output = nil
	return out
}

func TestExecuteRequestWithoutTypeDefaultsToExecute(t *testing.T) {
	exec := &fakeExecutor{output: []string{"hi"}}
	s, err := New(exec, false, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := s.Handle(Request{Code: "print('hi')"})
	er, ok := resp.(ExecuteResponse)
	if !ok {
		t.Fatalf("expected ExecuteResponse, got %T", resp)
	}
	if !er.Success || exec.lastCode != "print('hi')" {
		t.Fatalf("unexpected response: %+v", er)
	}
}

func TestUploadFileRejectedOutsideVirtualEnvironment(t *testing.T) {
	s, err := New(&fakeExecutor{}, false, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := s.Handle(Request{Type: "upload_file", Filename: "a.csv", Content: "x"})
	ur := resp.(UploadResponse)
	if ur.Success {
		t.Fatalf("expected failure outside virtual-environment mode")
	}
}

func TestUploadFileBase64Decodes(t *testing.T) {
	s, err := New(&fakeExecutor{}, true, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// "hi" base64-encoded
	resp := s.Handle(Request{Type: "upload_file", Filename: "a.txt", Content: "base64:aGk="})
	ur := resp.(UploadResponse)
	if !ur.Success {
		t.Fatalf("expected success, got %+v", ur)
	}
	f, err := s.VFS().Open("a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf := make([]byte, 2)
	if _, err := f.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf) != "hi" {
		t.Fatalf("expected %q, got %q", "hi", string(buf))
	}
}

func TestShareConnectAndResolve(t *testing.T) {
	s, err := New(&fakeExecutor{}, false, logrus.StandardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := s.Handle(Request{Type: "smb_connect", ShareName: "data", IP: "10.0.0.1", Login: "u"})
	sr := resp.(ShareResponse)
	if !sr.Success {
		t.Fatalf("expected success, got %+v", sr)
	}
	s.RegisterShareRoot("data", "/mnt/data")
	root, ok := s.ResolveShare("data")
	if !ok || root != "/mnt/data" {
		t.Fatalf("expected resolved root /mnt/data, got %q ok=%v", root, ok)
	}
}
