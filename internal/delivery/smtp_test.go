package delivery

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NielsdaWheelz/tixmail/internal/config"
)

// loginOnlyServer is a minimal ESMTP listener that advertises only
// AUTH LOGIN and records the mechanism each client asks for.
type loginOnlyServer struct {
	ln    net.Listener
	mu    sync.Mutex
	mechs []string
}

func newLoginOnlyServer(t *testing.T) *loginOnlyServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &loginOnlyServer{ln: ln}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *loginOnlyServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *loginOnlyServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.mechs...)
}

func (s *loginOnlyServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *loginOnlyServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) bool {
		_, err := conn.Write([]byte(line + "\r\n"))
		return err == nil
	}
	readLine := func() (string, bool) {
		line, err := r.ReadString('\n')
		return strings.TrimRight(line, "\r\n"), err == nil
	}

	if !reply("220 fake ESMTP") {
		return
	}
	for {
		line, ok := readLine()
		if !ok {
			return
		}
		fields := strings.Fields(line)
		verb := ""
		if len(fields) > 0 {
			verb = strings.ToUpper(fields[0])
		}
		switch verb {
		case "EHLO", "HELO":
			if !reply("250-fake") || !reply("250 AUTH LOGIN") {
				return
			}
		case "AUTH":
			mech := ""
			if len(fields) > 1 {
				mech = strings.ToUpper(fields[1])
			}
			s.mu.Lock()
			s.mechs = append(s.mechs, mech)
			s.mu.Unlock()
			if mech != "LOGIN" {
				if !reply("504 5.5.4 Unrecognized authentication type") {
					return
				}
				continue
			}
			if len(fields) < 3 {
				if !reply("334 VXNlcm5hbWU6") {
					return
				}
				if _, ok := readLine(); !ok {
					return
				}
			}
			if !reply("334 UGFzc3dvcmQ6") {
				return
			}
			if _, ok := readLine(); !ok {
				return
			}
			if !reply("235 2.7.0 Authentication successful") {
				return
			}
		case "QUIT":
			_ = reply("221 2.0.0 Bye")
			return
		default:
			if !reply("250 OK") {
				return
			}
		}
	}
}

func TestSMTPChannel_OpenLoginOnlyServer(t *testing.T) {
	srv := newLoginOnlyServer(t)
	ch := NewSMTPChannel(config.Env{
		SenderAddress:  "tickets@example.com",
		SenderPassword: "secret",
		Host:           "127.0.0.1",
		Port:           srv.port(),
		TLSPolicy:      config.TLSNone,
		Auth:           config.AuthLogin,
		Timeout:        5 * time.Second,
	})

	sess, err := ch.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	mechs := srv.seen()
	if len(mechs) != 1 || mechs[0] != "LOGIN" {
		t.Errorf("AUTH mechanisms = %v, want [LOGIN]", mechs)
	}
}

func TestSMTPChannel_OpenPlainAgainstLoginOnlyServer(t *testing.T) {
	srv := newLoginOnlyServer(t)
	ch := NewSMTPChannel(config.Env{
		SenderAddress:  "tickets@example.com",
		SenderPassword: "secret",
		Host:           "127.0.0.1",
		Port:           srv.port(),
		TLSPolicy:      config.TLSNone,
		Auth:           config.AuthPlain,
		Timeout:        5 * time.Second,
	})

	sess, err := ch.Open(context.Background())
	if err == nil {
		_ = sess.Close()
		t.Fatal("Open() with PLAIN succeeded against a LOGIN-only server")
	}
	if !IsSessionError(err) {
		t.Errorf("Open() error = %v, want session error", err)
	}
	if !strings.Contains(err.Error(), "open") {
		t.Errorf("error %q should name the open step", err.Error())
	}
}
