// ./main.go
package main

import (
	"github.com/zhangxinyong12/auto-fill-extension/cmd"
)

func main() {
	cmd.Execute()
}
