package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// secretsDir - стандартный путь Docker Secrets.
const secretsDir = "/run/secrets"

// ReadSecret читает именованный секрет из стандартной директории Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	return ReadSecretFile(filepath.Join(secretsDir, secretName))
}

// ReadSecretFile читает секрет из файла по указанному пути.
// Fallback на переменные окружения не делаем, чтобы поведение было консистентным.
func ReadSecretFile(filePath string) (string, error) {
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
