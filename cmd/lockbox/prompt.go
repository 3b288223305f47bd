package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()-_=+[]{}"

// maxGenerated caps gen:N and generate so a typo cannot ask for gigabytes.
const maxGenerated = 4096

// readSecret prompts on errOut and reads one line. On a terminal the input is
// not echoed. Only the line terminator is stripped.
func (a *app) readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(a.errOut, prompt)
	if a.tty != nil {
		b, err := term.ReadPassword(int(a.tty.Fd()))
		fmt.Fprintln(a.errOut)
		return b, err
	}
	line, err := a.readLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func (a *app) confirm(question string) (bool, error) {
	fmt.Fprintf(a.errOut, "%s (y/n): ", question)
	ans, err := a.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// genPassword draws n characters uniformly from alphabet.
func genPassword(n int) (string, error) {
	if n < 1 || n > maxGenerated {
		return "", fmt.Errorf("length must be between 1 and %d, got %d", maxGenerated, n)
	}
	// bytes at or above limit would bias the modulo.
	const limit = 256 - 256%len(alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

func mask(secret string) string {
	return strings.Repeat("*", len([]rune(secret)))
}
