package main

import "github.com/EO-DataHub/eodhp-todo-services/cmd"

func main() {
	cmd.Execute()
}
