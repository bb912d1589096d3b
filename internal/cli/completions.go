package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// completeHalf completes the --half flag with its two valid values.
func completeHalf(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"1\tdays 1-15", "2\tday 16 to end of month"}, cobra.ShellCompDirectiveNoFileComp
}

// completeMonth completes the --month flag with month numbers, described by
// their names.
func completeMonth(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for m := time.January; m <= time.December; m++ {
		n := fmt.Sprintf("%d", int(m))
		if toComplete == "" || strings.HasPrefix(n, toComplete) {
			out = append(out, n+"\t"+m.String())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeTaskFile restricts --input completion to text files.
func completeTaskFile(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"txt"}, cobra.ShellCompDirectiveFilterFileExt
}
