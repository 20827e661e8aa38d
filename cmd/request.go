package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/imgo/filter"
	"github.com/s0up4200/imgo/imgur"
)

var (
	params     []string
	selectExpr string

	selectors = filter.NewExprCompiler(filter.WithCache(16))
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <path>...",
	Short: "Perform GET requests against the Imgur API",
	Long: `Perform an authenticated GET request and print the response data.

Several paths are fetched concurrently and printed in order. Use --select to
print a single value, for example:

  imgo get /3/image/abc --select data.link
  imgo get /3/gallery/hot/viral/0 --select 'len(data)'`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runGet,
}

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:     "post <path>",
	Short:   "Perform a POST request against the Imgur API",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runPost,
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)

	getCmd.Flags().StringArrayVarP(&params, "param", "p", nil, "request parameter as key=value (repeatable)")
	getCmd.Flags().StringVarP(&selectExpr, "select", "s", "", "expression selecting the value to print")
	postCmd.Flags().StringArrayVarP(&params, "param", "p", nil, "form field as key=value (repeatable)")
	postCmd.Flags().StringVarP(&selectExpr, "select", "s", "", "expression selecting the value to print")
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	values, err := parseParams(params)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		resp, err := api.Get(ctx, args[0], values)
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp)
	}

	if len(values) > 0 {
		return fmt.Errorf("--param cannot be combined with multiple paths")
	}

	logger.Debug().Strs("paths", args).Msg("Fetching paths concurrently")

	responses, err := client.GetAll(ctx, args)
	if err != nil {
		return err
	}
	for _, resp := range responses {
		if err := printResponse(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	}
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	values, err := parseParams(params)
	if err != nil {
		return err
	}

	resp, err := api.Post(context.Background(), args[0], values)
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp)
}

// parseParams turns key=value pairs into url.Values
func parseParams(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", pair)
		}
		values.Add(key, value)
	}
	return values, nil
}

// printResponse prints the response data, or the selected value when
// --select is set
func printResponse(w io.Writer, resp *imgur.Response) error {
	if selectExpr == "" {
		if len(resp.Data) == 0 {
			fmt.Fprintln(w, "null")
			return nil
		}
		return printJSON(w, resp.Data)
	}

	sel, err := selectors.Compile(selectExpr)
	if err != nil {
		return err
	}

	env, err := resp.Map()
	if err != nil {
		return err
	}

	value, err := sel.Select(env)
	if err != nil {
		return err
	}

	if s, ok := value.(string); ok {
		fmt.Fprintln(w, s)
		return nil
	}
	return printJSON(w, value)
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
