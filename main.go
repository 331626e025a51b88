package main

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// Удобный локальный запуск: go run . из корня поднимает funnel-server.
func main() {
	projectDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("Ошибка при определении рабочей директории: %v", err)
	}

	serverPath := filepath.Join(projectDir, "cmd", "server")

	cmd := exec.Command("go", "run", ".")
	cmd.Dir = serverPath
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Println("Запуск funnel-server из директории", serverPath)
	if err := cmd.Run(); err != nil {
		log.Fatalf("Ошибка при запуске сервера: %v", err)
	}
}
