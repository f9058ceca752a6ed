package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "blocknote"

// KeychainStore talks to the OS keychain through its command line tool:
// `security` on macOS, `secret-tool` (libsecret) elsewhere.
type KeychainStore struct {
	goos string
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{goos: runtime.GOOS}
}

func (k *KeychainStore) Set(key string, value []byte) error {
	var cmd *exec.Cmd
	if k.goos == "darwin" {
		cmd = exec.Command("security", "add-generic-password",
			"-a", key, "-s", keychainService, "-w", string(value), "-U")
	} else {
		cmd = exec.Command("secret-tool", "store",
			"--label", keychainService+" "+key, "service", keychainService, "account", key)
		cmd.Stdin = strings.NewReader(string(value))
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("keychain set %s: %s: %w", key, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (k *KeychainStore) Get(key string) ([]byte, error) {
	var cmd *exec.Cmd
	if k.goos == "darwin" {
		cmd = exec.Command("security", "find-generic-password", "-a", key, "-s", keychainService, "-w")
	} else {
		cmd = exec.Command("secret-tool", "lookup", "service", keychainService, "account", key)
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		// security exits 44 for a missing item; secret-tool exits 1.
		if errors.As(err, &exitErr) && (exitErr.ExitCode() == 44 || exitErr.ExitCode() == 1) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	value := strings.TrimSpace(string(out))
	if value == "" {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return []byte(value), nil
}

// Delete removes key. A missing key is not an error.
func (k *KeychainStore) Delete(key string) error {
	var cmd *exec.Cmd
	if k.goos == "darwin" {
		cmd = exec.Command("security", "delete-generic-password", "-a", key, "-s", keychainService)
	} else {
		cmd = exec.Command("secret-tool", "clear", "service", keychainService, "account", key)
	}
	_ = cmd.Run()
	return nil
}
