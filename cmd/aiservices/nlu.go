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
	"github.com/aiservices/aiservices-go/aiservices-go-client/operation"
	"github.com/aiservices/aiservices-go/aiservices-go-contract/codecs"
	nlu "github.com/aiservices/aiservices-go/services/naturallanguageunderstandingv1"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/spf13/cobra"
)

func newNLUCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nlu",
		Aliases: []string{"natural-language-understanding"},
		Short:   "Natural Language Understanding v1 operations",
	}
	cmd.AddCommand(newAnalyzeCmd(c), newListModelsCmd(c), newDeleteModelCmd(c))
	return cmd
}

func (c *cli) nluClient() (*nlu.NaturalLanguageUnderstandingV1, error) {
	conf, err := c.conf.resolve(c.conf.NaturalLanguageUnderstanding, nlu.DefaultServiceName)
	if err != nil {
		return nil, err
	}
	c.applyOverrides(&conf.URL, &conf.Version)
	return nlu.New(conf)
}

func newAnalyzeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze text, HTML or a public webpage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.nluClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			features, err := parseFeatures(stringSliceFlag(cmd, "features"), stringFlag(cmd, "features-json"), int64Flag(cmd, "limit"))
			if err != nil {
				return err
			}
			return await(cmd, c, client.Analyze(cmd.Context(), &nlu.AnalyzeOptions{
				CallOptions:         call,
				Features:            features,
				Text:                stringFlag(cmd, "text"),
				HTML:                stringFlag(cmd, "html"),
				URL:                 stringFlag(cmd, "page-url"),
				Clean:               boolFlag(cmd, "clean"),
				Xpath:               stringFlag(cmd, "xpath"),
				FallbackToRaw:       boolFlag(cmd, "fallback-to-raw"),
				ReturnAnalyzedText:  boolFlag(cmd, "return-analyzed-text"),
				Language:            stringFlag(cmd, "language"),
				LimitTextCharacters: int64Flag(cmd, "limit-text-characters"),
			}))
		},
	}
	flags := cmd.Flags()
	flags.StringSlice("features", nil, "Features to analyze: categories, concepts, emotion, entities, keywords, metadata, relations, semantic_roles, sentiment, syntax")
	flags.String("features-json", "", "Features object as JSON, merged over --features")
	flags.Int64("limit", 0, "Result limit applied to the categories, concepts, entities, keywords and semantic_roles features")
	flags.String("text", "", "Plain text to analyze")
	flags.String("html", "", "HTML to analyze")
	flags.String("page-url", "", "Public webpage to analyze")
	flags.Bool("clean", true, "Clean webpage content before analysis")
	flags.String("xpath", "", "XPath query applied to HTML or webpage input")
	flags.Bool("fallback-to-raw", true, "Use raw HTML if text cleaning fails")
	flags.Bool("return-analyzed-text", false, "Include the analyzed text in the results")
	flags.String("language", "", "ISO 639-1 language code overriding detection")
	flags.Int64("limit-text-characters", 0, "Maximum number of characters processed")
	return cmd
}

// parseFeatures builds Features from feature names and an optional JSON document. It returns nil when
// neither is given so the service reports the missing parameter.
func parseFeatures(names []string, featuresJSON *string, limit *int64) (*nlu.Features, error) {
	if len(names) == 0 && featuresJSON == nil {
		return nil, nil
	}
	features := &nlu.Features{}
	for _, name := range names {
		switch name {
		case "categories":
			features.Categories = &nlu.CategoriesOptions{Limit: limit}
		case "concepts":
			features.Concepts = &nlu.ConceptsOptions{Limit: limit}
		case "emotion":
			features.Emotion = &nlu.EmotionOptions{}
		case "entities":
			features.Entities = &nlu.EntitiesOptions{Limit: limit}
		case "keywords":
			features.Keywords = &nlu.KeywordsOptions{Limit: limit}
		case "metadata":
			features.Metadata = &nlu.MetadataOptions{}
		case "relations":
			features.Relations = &nlu.RelationsOptions{}
		case "semantic_roles":
			features.SemanticRoles = &nlu.SemanticRolesOptions{Limit: limit}
		case "sentiment":
			features.Sentiment = &nlu.SentimentOptions{}
		case "syntax":
			features.Syntax = &nlu.SyntaxOptions{Sentences: operation.Ptr(true)}
		default:
			return nil, werror.Error("unknown feature", werror.SafeParam("feature", name))
		}
	}
	if featuresJSON != nil {
		if err := codecs.JSON.Unmarshal([]byte(*featuresJSON), features); err != nil {
			return nil, werror.Wrap(err, "failed to parse features JSON")
		}
	}
	return features, nil
}

func newListModelsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List the custom models deployed to the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.nluClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			return await(cmd, c, client.ListModels(cmd.Context(), &nlu.ListModelsOptions{CallOptions: call}))
		},
	}
}

func newDeleteModelCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-model MODEL_ID",
		Short: "Delete a custom model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.nluClient()
			if err != nil {
				return err
			}
			call, err := c.callOptions()
			if err != nil {
				return err
			}
			return await(cmd, c, client.DeleteModel(cmd.Context(), &nlu.DeleteModelOptions{CallOptions: call, ModelID: &args[0]}))
		},
	}
}
