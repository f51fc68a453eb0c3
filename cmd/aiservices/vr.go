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
	"io"
	"os"

	vr "github.com/aiservices/aiservices-go/services/visualrecognitionv3"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
	"github.com/spf13/cobra"
)

func newVRCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vr",
		Aliases: []string{"visual-recognition"},
		Short:   "Visual Recognition v3 operations",
	}
	cmd.AddCommand(
		newClassifyCmd(c),
		newDetectFacesCmd(c),
		newCreateClassifierCmd(c),
		newListClassifiersCmd(c),
		newGetClassifierCmd(c),
		newUpdateClassifierCmd(c),
		newDeleteClassifierCmd(c),
		newGetCoreMlModelCmd(c),
		newDeleteUserDataCmd(c),
	)
	return cmd
}

func (c *cli) vrClient() (*vr.VisualRecognitionV3, error) {
	conf, err := c.conf.resolve(c.conf.VisualRecognition, vr.DefaultServiceName)
	if err != nil {
		return nil, err
	}
	c.applyOverrides(&conf.URL, &conf.Version)
	return vr.New(conf)
}

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().String("images-file", "", "Image file or .zip file of images")
	cmd.Flags().String("images-file-content-type", "", "Content type of the images file")
	cmd.Flags().String("image-url", "", "URL of an image")
	cmd.Flags().String("accept-language", "", "Language of the returned class names, e.g. en or pt-br")
}

func newClassifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			var files fileSet
			defer files.Close()
			images, filename, err := files.openFlag(cmd, "images-file")
			if err != nil {
				return err
			}
			return await(cmd, c, client.Classify(cmd.Context(), &vr.ClassifyOptions{
				CallOptions:           call,
				ImagesFile:            images,
				ImagesFilename:        filename,
				ImagesFileContentType: stringFlag(cmd, "images-file-content-type"),
				URL:                   stringFlag(cmd, "image-url"),
				Threshold:             float32Flag(cmd, "threshold"),
				Owners:                stringSliceFlag(cmd, "owners"),
				ClassifierIDs:         stringSliceFlag(cmd, "classifier-ids"),
				AcceptLanguage:        stringFlag(cmd, "accept-language"),
			}))
		},
	}
	addImageFlags(cmd)
	cmd.Flags().Float32("threshold", 0.5, "Minimum score a class must have to be returned")
	cmd.Flags().StringSlice("owners", nil, "Classifier owners: IBM, me")
	cmd.Flags().StringSlice("classifier-ids", nil, "Classifiers to apply")
	return cmd
}

func newDetectFacesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect-faces",
		Short: "Detect faces in images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			var files fileSet
			defer files.Close()
			images, filename, err := files.openFlag(cmd, "images-file")
			if err != nil {
				return err
			}
			return await(cmd, c, client.DetectFaces(cmd.Context(), &vr.DetectFacesOptions{
				CallOptions:           call,
				ImagesFile:            images,
				ImagesFilename:        filename,
				ImagesFileContentType: stringFlag(cmd, "images-file-content-type"),
				URL:                   stringFlag(cmd, "image-url"),
				AcceptLanguage:        stringFlag(cmd, "accept-language"),
			}))
		},
	}
	addImageFlags(cmd)
	return cmd
}

func addExampleFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("positive", nil, "Positive examples as class=path/to/file.zip, may be repeated")
	cmd.Flags().String("negative", "", "Negative examples .zip file")
}

func newCreateClassifierCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-classifier NAME",
		Short: "Train a new custom classifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			var files fileSet
			defer files.Close()
			positive, _ := cmd.Flags().GetStringArray("positive")
			examples, err := files.openExamples(positive)
			if err != nil {
				return err
			}
			negative, negativeName, err := files.openFlag(cmd, "negative")
			if err != nil {
				return err
			}
			return await(cmd, c, client.CreateClassifier(cmd.Context(), &vr.CreateClassifierOptions{
				CallOptions:              call,
				Name:                     &args[0],
				PositiveExamples:         examples,
				NegativeExamples:         negative,
				NegativeExamplesFilename: negativeName,
			}))
		},
	}
	addExampleFlags(cmd)
	return cmd
}

func newListClassifiersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-classifiers",
		Short: "List custom classifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			return await(cmd, c, client.ListClassifiers(cmd.Context(), &vr.ListClassifiersOptions{
				CallOptions: call,
				Verbose:     boolFlag(cmd, "verbose"),
			}))
		},
	}
	cmd.Flags().Bool("verbose", false, "Return full classifier details")
	return cmd
}

func newGetClassifierCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get-classifier CLASSIFIER_ID",
		Short: "Retrieve classifier details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			return await(cmd, c, client.GetClassifier(cmd.Context(), &vr.GetClassifierOptions{CallOptions: call, ClassifierID: &args[0]}))
		},
	}
}

func newUpdateClassifierCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-classifier CLASSIFIER_ID",
		Short: "Add classes or examples to a classifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			var files fileSet
			defer files.Close()
			positive, _ := cmd.Flags().GetStringArray("positive")
			examples, err := files.openExamples(positive)
			if err != nil {
				return err
			}
			negative, negativeName, err := files.openFlag(cmd, "negative")
			if err != nil {
				return err
			}
			return await(cmd, c, client.UpdateClassifier(cmd.Context(), &vr.UpdateClassifierOptions{
				CallOptions:              call,
				ClassifierID:             &args[0],
				PositiveExamples:         examples,
				NegativeExamples:         negative,
				NegativeExamplesFilename: negativeName,
			}))
		},
	}
	addExampleFlags(cmd)
	return cmd
}

func newDeleteClassifierCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-classifier CLASSIFIER_ID",
		Short: "Delete a custom classifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			return await(cmd, c, client.DeleteClassifier(cmd.Context(), &vr.DeleteClassifierOptions{CallOptions: call, ClassifierID: &args[0]}))
		},
	}
}

func newGetCoreMlModelCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-core-ml-model CLASSIFIER_ID",
		Short: "Download the Core ML model of a classifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("out")
			model, err := client.GetCoreMlModel(cmd.Context(), &vr.GetCoreMlModelOptions{CallOptions: call, ClassifierID: &args[0]}).Result(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = model.Close()
			}()
			return writeModel(cmd, c, path, model)
		},
	}
	cmd.Flags().String("out", "", "File the model is written to; standard output when unset")
	return cmd
}

func writeModel(cmd *cobra.Command, c *cli, path string, model io.Reader) error {
	if path == "" {
		if _, err := io.Copy(c.out, model); err != nil {
			return werror.Wrap(err, "failed to write model")
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return werror.Wrap(err, "failed to create model file", werror.UnsafeParam("path", path))
	}
	n, err := io.Copy(f, model)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return werror.Wrap(err, "failed to write model file", werror.UnsafeParam("path", path))
	}
	svc1log.FromContext(cmd.Context()).Info("Wrote Core ML model",
		svc1log.SafeParam("bytes", n),
		svc1log.UnsafeParam("path", path))
	return nil
}

func newDeleteUserDataCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user-data CUSTOMER_ID",
		Short: "Delete all data associated with a customer ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.vrClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			return await(cmd, c, client.DeleteUserData(cmd.Context(), &vr.DeleteUserDataOptions{CallOptions: call, CustomerID: &args[0]}))
		},
	}
}
