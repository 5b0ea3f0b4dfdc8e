package main

import (
	"log"
	"os"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cmd, sess := newRootCmd()
	err := cmd.Execute()
	sess.Close()
	if err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}
