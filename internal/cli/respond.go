package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var respondMaxLength int

var respondCmd = &cobra.Command{
	Use:   "respond <text>",
	Short: "Generate a response seeded by text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRespond,
}

func init() {
	respondCmd.Flags().IntVar(&respondMaxLength, "max-length", 150, "maximum response length in characters")
}

func runRespond(cmd *cobra.Command, args []string) error {
	seed := strings.Join(args, " ")

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println(eng.GenerateResponse(context.Background(), seed, respondMaxLength))
	return nil
}
