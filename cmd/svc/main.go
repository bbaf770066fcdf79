// Command svc compiles a declarative service.yml manifest into a
// hardened, capability-bound deployment plan.
package main

import (
	"os"

	"github.com/platformforge/svc/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
