package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netroute/netroute/internal/classify"
)

type classification struct {
	Status   int    `json:"status"`
	Category string `json:"category"`
	Message  string `json:"message,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "classify <status>...",
		Aliases: []string{"cls"},
		Short:   "Show how status codes are classified",
		Example: `  netroute classify 200 400 403 404 503
  netroute classify 418 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			h := classify.NewDefaultHandler()
			items := make([]classification, 0, len(args))
			for _, arg := range args {
				status, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid argument %q: status must be an integer", arg)
				}
				o := h.Classify(status)
				items = append(items, classification{
					Status:   status,
					Category: o.Category.Code(),
					Message:  o.Message,
				})
			}

			f := newFormatter(cmd)
			if !f.StartTable("STATUS", "CATEGORY", "MESSAGE") {
				return f.Output(items)
			}
			for _, it := range items {
				f.Row(strconv.Itoa(it.Status), it.Category, it.Message)
			}
			return f.EndTable()
		}),
	}
}
