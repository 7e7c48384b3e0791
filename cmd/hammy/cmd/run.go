package cmd

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gosuri/uilive"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-hammy-upload/internal/api"
	"go-hammy-upload/internal/config"
	"go-hammy-upload/internal/fetch"
	"go-hammy-upload/internal/format"
	"go-hammy-upload/internal/output"
	"go-hammy-upload/internal/pipeline"
)

// runUpload wires the configured uploader, sinks and resize policy into
// the pipeline and reports the terminal summary.
func runUpload(cmd *cobra.Command, args []string) error {
	if globalConfigCreated {
		return fmt.Errorf("a new config file was created at %s; set ApiKey there and run again", globalConfigPath)
	}
	if err := config.Validate(globalConfig, globalConfigPath); err != nil {
		return err
	}

	spec, err := format.ParseSpec(viper.GetString("upload.format"))
	if err != nil {
		return err
	}

	httpClient := &http.Client{
		Transport: globalHttpTransport,
		Timeout:   time.Duration(globalConfig.ApiClientTimeoutSec) * time.Second,
	}
	client := api.NewClient(globalConfig.ApiKey, httpClient)

	// Sinks: stdout is the default when no explicit sink was chosen.
	var sinks []pipeline.Sink
	if viper.GetBool("upload.clip") {
		sinks = append(sinks, output.ClipboardSink{})
	}
	if viper.GetBool("upload.txt") {
		fileSink, err := output.NewFileSink(globalConfig.TxtPath)
		if err != nil {
			return err
		}
		log.Infof("Writing links to %s", fileSink.Path)
		sinks = append(sinks, fileSink)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, output.NewStdoutSink())
	}

	confirm := promptConfirm
	if viper.GetBool("upload.yes") {
		log.Debug("Skipping resize prompts due to --yes flag.")
		confirm = func(string) bool { return true }
	}

	writer := uilive.New()
	writer.Start()

	p := &pipeline.Pipeline{
		Uploader: client,
		Fetcher:  fetch.NewFetcher(httpClient),
		Confirm:  confirm,
		Sinks:    sinks,
		Progress: writer,
		Options: pipeline.Options{
			Width:  viper.GetInt("upload.width"),
			Spec:   spec,
			Single: viper.GetBool("upload.single"),
			Unique: viper.GetBool("upload.unique"),
		},
	}

	summary, _, runErr := p.Run(args)
	writer.Stop()

	fmt.Println("----- Upload Summary -----")
	fmt.Printf(" Items Enumerated: %d\n", summary.Enumerated)
	fmt.Printf(" Succeeded: %d\n", summary.Succeeded)
	fmt.Printf(" Failed: %d\n", summary.Failed)
	if summary.Skipped > 0 {
		fmt.Printf(" Skipped: %d\n", summary.Skipped)
	}
	if summary.Aborted {
		fmt.Println(" Run aborted before all items were attempted.")
	}
	fmt.Println("--------------------------")

	return runErr
}

// promptConfirm asks a yes/no question on stdin.
func promptConfirm(question string) bool {
	fmt.Printf("%s (y/N): ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer)) == "y"
}
