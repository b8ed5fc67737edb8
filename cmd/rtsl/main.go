package main

import (
	_ "github.com/bristot/linux-rt-rtsl/internal/rtslprobe"
)

func main() {
	Execute()
}
