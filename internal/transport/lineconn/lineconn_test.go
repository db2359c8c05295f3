package lineconn

import (
	"bufio"
	"net"
	"testing"
)

func TestStatusAndReadLine(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := New(server)
	go sc.Status(200, "hello ready")

	r := bufio.NewReader(client)
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if line != "200 hello ready\r\n" {
		t.Errorf("unexpected status line: %q", line)
	}
}

func TestMultilineStatusDotStuffing(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := New(server)
	go sc.MultilineStatus(215, "list follows", []string{"a", ".leadingdot", "b"})

	r := bufio.NewReader(client)
	var got []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, line)
		if line == ".\r\n" {
			break
		}
	}
	if got[0] != "215 list follows\r\n" {
		t.Errorf("unexpected status: %q", got[0])
	}
	if got[2] != "..leadingdot\r\n" {
		t.Errorf("expected dot-stuffed line, got %q", got[2])
	}
}

func TestReadDotTerminatedUnstuffs(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	cc := New(client)
	go func() {
		server.Write([]byte("first\r\n..dotted\r\n.\r\n"))
	}()

	lines, err := cc.ReadDotTerminated()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "first" || lines[1] != ".dotted" {
		t.Errorf("unexpected lines: %#v", lines)
	}
}
