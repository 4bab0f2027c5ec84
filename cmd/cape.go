package cmd

import (
	"strings"

	"github.com/openswoop/tritondata/pkg/scrape"
	"github.com/spf13/cobra"
)

var capeCmd = &cobra.Command{
	Use:   "cape SUBJECT COURSE",
	Short: "Print the CAPEs of a single course",
	Long: `Fetches and parses the CAPE results page of one course, such as
"CSE 3", and prints the evaluations that belong to it. Useful for
checking the parser against the live site.`,
	Example: "  tritondata cape CSE 8A",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		code := scrape.CourseCode{
			Subject: strings.ToUpper(args[0]),
			Course:  strings.ToUpper(args[1]),
		}
		capes, err := client.CourseEvaluations(cmd.Context(), code)
		if err != nil {
			return err
		}
		printCourseEvaluations(capes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capeCmd)
}
