package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTrainersCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainers",
		Short: "Trainer catalog management",
	}
	cmd.AddCommand(newTrainersImportCmd(rt))
	cmd.AddCommand(newTrainersListCmd(rt))
	return cmd
}

func newTrainersImportCmd(rt *runtime) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "import",
		Short: "Upsert trainers from a YAML catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			svc, err := rt.services()
			if err != nil {
				return err
			}
			n, err := svc.Trainers.ImportCatalog(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d trainers\n", n)
			return nil
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	_ = c.MarkFlagRequired("file")
	return c
}

func newTrainersListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured trainers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.services()
			if err != nil {
				return err
			}
			trainers, err := svc.Trainers.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tACTIVE\tTIME ZONE\tLESSON\tBUFFER")
			for _, t := range trainers {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%dm\t%dm\n", t.Code, t.Name, t.Active, t.TimeZone, t.LessonDurationMin, t.BufferMin)
			}
			return w.Flush()
		},
	}
}
