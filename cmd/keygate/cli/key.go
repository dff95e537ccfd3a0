package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/service"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage registration API keys",
		Long:    "Issue and list the single-use API keys required to complete a registration.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())

	return cmd
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key",
		Long:  "Generate and persist a new single-use registration key. The raw value is shown once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate()
		},
	}

	return cmd
}

func runKeyCreate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	keys := service.NewKeyService(st)
	value, err := keys.Issue(context.Background())
	if err != nil {
		return fmt.Errorf("issue key: %w", err)
	}

	fmt.Println(value)
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List issued keys (values redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runKeyList(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	all, err := st.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	type keyRow struct {
		ID        int64  `json:"id"`
		Key       string `json:"api_key"`
		ExpiresAt string `json:"expires_at"`
		Claimed   bool   `json:"claimed"`
	}

	rows := make([]keyRow, 0, len(all))
	for i := range all {
		k := &all[i]
		rows = append(rows, keyRow{
			ID:        k.ID,
			Key:       k.Redacted(),
			ExpiresAt: k.ExpiresAt.Format("2006-01-02"),
			Claimed:   k.Claimed(),
		})
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKEY\tEXPIRES\tCLAIMED")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", row.ID, row.Key, row.ExpiresAt, row.Claimed)
	}
	return w.Flush()
}
