package main

import cmd "github.com/Pavankona715/seo-audit-platform/internal/cli"

func main() {
	cmd.Execute()
}
