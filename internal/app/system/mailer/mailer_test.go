package mailer_test

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"fmt"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/system/mailer"
)

// smtpServer is a single-connection fake SMTP server. With a certificate
// it advertises STARTTLS and AUTH PLAIN; without one it speaks plain
// unauthenticated SMTP, like a local Mailpit.
type smtpServer struct {
	ln   net.Listener
	cert *tls.Certificate

	mu       sync.Mutex
	mailFrom string
	rcptTo   []string
	authCmd  string
	msgData  string
	tlsUsed  bool
}

func startSMTPServer(t *testing.T, cert *tls.Certificate) *smtpServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &smtpServer{ln: ln, cert: cert}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *smtpServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *smtpServer) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	s.handle(conn)
}

func (s *smtpServer) handle(conn net.Conn) {
	defer conn.Close()
	br := bufio.NewReader(conn)
	fmt.Fprintf(conn, "220 fake ESMTP\r\n")
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		raw := strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(raw)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			switch {
			case s.cert != nil && !s.sawTLS():
				fmt.Fprintf(conn, "250-fake\r\n250-STARTTLS\r\n250 AUTH PLAIN\r\n")
			case s.cert != nil:
				fmt.Fprintf(conn, "250-fake\r\n250 AUTH PLAIN\r\n")
			default:
				fmt.Fprintf(conn, "250 fake\r\n")
			}
		case cmd == "STARTTLS":
			fmt.Fprintf(conn, "220 ready\r\n")
			tlsConn := tls.Server(conn, &tls.Config{Certificates: []tls.Certificate{*s.cert}})
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			br = bufio.NewReader(conn)
			s.mu.Lock()
			s.tlsUsed = true
			s.mu.Unlock()
		case strings.HasPrefix(cmd, "AUTH"):
			s.mu.Lock()
			s.authCmd = raw
			s.mu.Unlock()
			fmt.Fprintf(conn, "235 2.7.0 accepted\r\n")
		case strings.HasPrefix(cmd, "MAIL"):
			s.mu.Lock()
			s.mailFrom = raw
			s.mu.Unlock()
			fmt.Fprintf(conn, "250 ok\r\n")
		case strings.HasPrefix(cmd, "RCPT"):
			s.mu.Lock()
			s.rcptTo = append(s.rcptTo, raw)
			s.mu.Unlock()
			fmt.Fprintf(conn, "250 ok\r\n")
		case cmd == "DATA":
			fmt.Fprintf(conn, "354 send\r\n")
			var b strings.Builder
			for {
				dl, err := br.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimRight(dl, "\r\n") == "." {
					break
				}
				b.WriteString(dl)
			}
			s.mu.Lock()
			s.msgData = b.String()
			s.mu.Unlock()
			fmt.Fprintf(conn, "250 queued\r\n")
		case cmd == "QUIT":
			fmt.Fprintf(conn, "221 bye\r\n")
			return
		default:
			fmt.Fprintf(conn, "250 ok\r\n")
		}
	}
}

func (s *smtpServer) sawTLS() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tlsUsed
}

func (s *smtpServer) envelope() (from string, rcpts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mailFrom, append([]string(nil), s.rcptTo...)
}

func (s *smtpServer) auth() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCmd
}

func (s *smtpServer) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgData
}

// selfSignedCert issues a throwaway certificate for 127.0.0.1 plus a pool
// that trusts it.
func selfSignedCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "fake-smtp"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, pool
}

func decodeBody(t *testing.T, msg string) string {
	t.Helper()
	parts := strings.SplitN(msg, "\r\n\r\n", 2)
	if len(parts) != 2 {
		t.Fatalf("message has no header/body separator:\n%s", msg)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(parts[1], "\r\n", ""))
	if err != nil {
		t.Fatalf("body is not valid base64: %v", err)
	}
	return string(raw)
}

func TestSendUnauthenticated(t *testing.T) {
	srv := startSMTPServer(t, nil)
	m := mailer.New(mailer.Config{
		Host:     "127.0.0.1",
		Port:     srv.port(),
		From:     "noreply@musclub.local",
		FromName: "MusClub",
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body := "Привет, alice!\n\nДо встречи!\n"
	if err := m.Send(ctx, "alice@example.com", "Hello", body); err != nil {
		t.Fatalf("send: %v", err)
	}

	from, rcpts := srv.envelope()
	if !strings.Contains(from, "<noreply@musclub.local>") {
		t.Errorf("envelope from: %q", from)
	}
	if len(rcpts) != 1 || !strings.Contains(rcpts[0], "<alice@example.com>") {
		t.Errorf("envelope rcpt: %v", rcpts)
	}

	msg := srv.message()
	if !strings.Contains(msg, "From: MusClub <noreply@musclub.local>\r\n") {
		t.Errorf("From header missing:\n%s", msg)
	}
	if !strings.Contains(msg, "To: alice@example.com\r\n") {
		t.Errorf("To header missing:\n%s", msg)
	}
	if !strings.Contains(msg, "Subject: Hello\r\n") {
		t.Errorf("Subject header missing:\n%s", msg)
	}
	if !strings.Contains(msg, "Message-ID: <") {
		t.Errorf("Message-ID header missing:\n%s", msg)
	}
	if got := decodeBody(t, msg); got != body {
		t.Errorf("body round-trip: got %q, want %q", got, body)
	}
}

func TestSendAuthenticatedStartTLS(t *testing.T) {
	cert, pool := selfSignedCert(t)
	srv := startSMTPServer(t, &cert)
	m := mailer.New(mailer.Config{
		Host:      "127.0.0.1",
		Port:      srv.port(),
		User:      "mailer",
		Pass:      "secret",
		From:      "noreply@musclub.local",
		FromName:  "MusClub",
		TLSConfig: &tls.Config{ServerName: "127.0.0.1", RootCAs: pool},
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Send(ctx, "bob@example.com", "Напоминание: Концерт", "Привет!\n"); err != nil {
		t.Fatalf("send over starttls: %v", err)
	}

	if !srv.sawTLS() {
		t.Error("connection was never upgraded to TLS")
	}
	if !strings.HasPrefix(strings.ToUpper(srv.auth()), "AUTH PLAIN ") {
		t.Errorf("AUTH command: %q", srv.auth())
	}

	// Non-ASCII subjects are MIME-encoded for the header.
	if !strings.Contains(srv.message(), "Subject: =?UTF-8?b?") {
		t.Errorf("subject not MIME-encoded:\n%s", srv.message())
	}
}
