package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/diillson/aurora-logmon/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer) {
	banner := `
    ___                                   __                                     
   /   | __  ___________  _________ _    / /   ____  ____ _____ ___  ____  ____ 
  / /| |/ / / / ___/ __ \/ ___/ __ '/   / /   / __ \/ __ '/ __ '__ \/ __ \/ __ \
 / ___ / /_/ / /  / /_/ / /  / /_/ /   / /___/ /_/ / /_/ / / / / / / /_/ / / / /
/_/  |_\__,_/_/   \____/_/   \__,_/   /_____/\____/\__, /_/ /_/ /_/\____/_/ /_/ 
                                                  /____/                        
`
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, red(banner))
	fmt.Fprintln(w, blue(fmt.Sprintf("Aurora Log Monitor (v%s)", version.FormatVersion())))
}
