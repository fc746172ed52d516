package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vyomadl/vyoma-dl/config"
	"github.com/vyomadl/vyoma-dl/session"
	"golang.org/x/term"
)

// prompter asks for values on the terminal. Passwords are read without
// echo when in is a terminal.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// line returns the answer without its line ending; other whitespace is
// kept.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) secret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// confirm treats an empty answer as yes.
func (p *prompter) confirm(label string) bool {
	answer, err := p.line(label)
	if err != nil {
		return false
	}
	answer = strings.TrimSpace(answer)
	return answer == "" || strings.HasPrefix(strings.ToLower(answer), "y")
}

// resolveCredentials fills the credentials from, in order: flags,
// environment and config file (all through viper), the saved credentials
// file, and finally the terminal. prompted reports whether the terminal
// was used.
func resolveCredentials(p *prompter, credentialsFile string) (creds session.Credentials, prompted bool, err error) {
	creds.Username = config.C().Username
	creds.Password = config.C().Password
	if creds.Username == "" || creds.Password == "" {
		user, pass, err := config.ReadCredentials(credentialsFile)
		if err != nil {
			return creds, false, err
		}
		if creds.Username == "" {
			creds.Username = user
		}
		if creds.Password == "" {
			creds.Password = pass
		}
	}
	if creds.Username == "" {
		if creds.Username, err = p.line("Username: "); err != nil {
			return creds, true, fmt.Errorf("read username: %w", err)
		}
		prompted = true
	}
	if creds.Password == "" {
		if creds.Password, err = p.secret("Password: "); err != nil {
			return creds, true, fmt.Errorf("read password: %w", err)
		}
		prompted = true
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return creds, prompted, session.ErrEmptyCredentials
	}
	return creds, prompted, nil
}

func offerToSave(p *prompter, path string, creds session.Credentials) error {
	if !p.confirm("Save credentials for future use? (Y/n) ") {
		return nil
	}
	if err := config.WriteCredentials(path, creds.Username, creds.Password); err != nil {
		return err
	}
	fmt.Fprintln(p.out, "Credentials saved!")
	return nil
}
