// Copyright (c) 2024 The aiservices-go Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"net/http"

	"github.com/aiservices/aiservices-go/aiservices-go-client/operation"
	"github.com/joho/godotenv"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-logging/wlog"
	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
	"github.com/spf13/cobra"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// cli holds the global flags and the loaded configuration shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer

	configPath     string
	envFiles       []string
	output         string
	debug          bool
	serviceURL     string
	apiVersion     string
	headers        []string
	returnResponse bool

	conf config
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}
	rootCmd := &cobra.Command{
		Use:          "aiservices",
		Short:        "Call Natural Language Understanding and Visual Recognition operations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringSliceVar(&c.envFiles, "env-file", nil, "Dotenv files loaded into the environment before credentials are discovered")
	flags.StringVarP(&c.output, "output", "o", outputJSON, "Output format: json or yaml")
	flags.BoolVar(&c.debug, "debug", false, "Log requests at debug level")
	flags.StringVar(&c.serviceURL, "url", "", "Service URL, overriding configuration and credentials")
	flags.StringVar(&c.apiVersion, "api-version", "", "API version date sent with every request, overriding configuration")
	flags.StringArrayVarP(&c.headers, "header", "H", nil, "Request header as 'Name: value', may be repeated")
	flags.BoolVar(&c.returnResponse, "return-response", false, "Print the status code and headers along with the result")

	rootCmd.AddCommand(newNLUCmd(c), newVRCmd(c))
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.output != outputJSON && c.output != outputYAML {
		return werror.Error("unsupported output format", werror.SafeParam("output", c.output))
	}
	if len(c.envFiles) > 0 {
		if err := godotenv.Load(c.envFiles...); err != nil {
			return werror.Wrap(err, "failed to load env files")
		}
	}
	conf, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.conf = conf

	level := wlog.InfoLevel
	if c.debug {
		level = wlog.DebugLevel
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(svc1log.WithLogger(ctx, svc1log.New(c.errOut, level)))
	return nil
}

// callOptions builds the per-call options from the global flags.
func (c *cli) callOptions() (operation.CallOptions, error) {
	opts := operation.CallOptions{ReturnResponse: c.returnResponse}
	if len(c.headers) == 0 {
		return opts, nil
	}
	opts.Headers = make(http.Header)
	for _, h := range c.headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return operation.CallOptions{}, err
		}
		opts.Headers.Add(name, value)
	}
	return opts, nil
}

// applyOverrides applies the --url and --api-version flags to a service configuration.
func (c *cli) applyOverrides(url, version *string) {
	if c.serviceURL != "" {
		*url = c.serviceURL
	}
	if c.apiVersion != "" {
		*version = c.apiVersion
	}
}

// printResponse writes the result of a call, or the whole envelope with --return-response.
func printResponse[T any](c *cli, resp *operation.DetailedResponse[T]) error {
	var v interface{} = resp.Result
	if c.returnResponse {
		v = struct {
			StatusCode int         `json:"status"`
			Headers    http.Header `json:"headers"`
			Result     T           `json:"result"`
		}{resp.StatusCode, resp.Headers, resp.Result}
	}
	return writeOutput(c.out, c.output, v)
}

func await[T any](cmd *cobra.Command, c *cli, f *operation.Future[T]) error {
	resp, err := f.Await(cmd.Context())
	if err != nil {
		return err
	}
	return printResponse(c, resp)
}
