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

// Package naturallanguageunderstandingv1 is a client for Natural Language Understanding v1, which
// analyzes text, HTML or a public webpage for concepts, entities, keywords, sentiment and more.
package naturallanguageunderstandingv1

import (
	"context"
	"net/http"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/aiservices/aiservices-go/aiservices-go-client/operation"
	"github.com/aiservices/aiservices-go/aiservices-go-client/service"
	"github.com/aiservices/aiservices-go/aiservices-go-contract/sdkheaders"
)

const (
	// DefaultServiceName is the name used for credential discovery and SDK analytics.
	DefaultServiceName = "natural-language-understanding"
	// DefaultServiceVersion is the API major version this client targets.
	DefaultServiceVersion = "v1"
	// DefaultServiceURL is used when neither the configuration nor discovered credentials name one.
	DefaultServiceURL = "https://gateway.watsonplatform.net/natural-language-understanding/api"
)

// NaturalLanguageUnderstandingV1 exposes the Natural Language Understanding operations.
type NaturalLanguageUnderstandingV1 struct {
	*service.BaseService
}

// New returns a client for conf. conf.Version is required; the service name, service version and
// URL default to the package constants.
func New(conf service.Config, params ...httpclient.ClientParam) (*NaturalLanguageUnderstandingV1, error) {
	if conf.ServiceName == "" {
		conf.ServiceName = DefaultServiceName
	}
	if conf.ServiceVersion == "" {
		conf.ServiceVersion = DefaultServiceVersion
	}
	base, err := service.NewBaseService(conf, DefaultServiceURL, params...)
	if err != nil {
		return nil, err
	}
	return &NaturalLanguageUnderstandingV1{BaseService: base}, nil
}

func operationHeaders(operationID string) http.Header {
	h := sdkheaders.ForOperation(DefaultServiceName, DefaultServiceVersion, operationID)
	h.Set("Accept", "application/json")
	return h
}

// AnalyzeOptions are the parameters of Analyze. One of Text, HTML or URL should be set.
type AnalyzeOptions struct {
	operation.CallOptions

	// Features to analyze the document for. Required.
	Features *Features
	// Text is plain text to analyze.
	Text *string
	// HTML is an HTML document to analyze.
	HTML *string
	// URL is a public webpage to analyze.
	URL *string
	// Clean set to false disables webpage cleaning.
	Clean *bool
	// Xpath is a query whose results are appended to the cleaned webpage text.
	Xpath *string
	// FallbackToRaw uses raw HTML content if text cleaning fails.
	FallbackToRaw *bool
	// ReturnAnalyzedText returns the analyzed text in the results.
	ReturnAnalyzedText *bool
	// Language is an ISO 639-1 code overriding automatic language detection.
	Language *string
	// LimitTextCharacters caps the number of characters processed.
	LimitTextCharacters *int64
}

func (o AnalyzeOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("features", o.Features)}
}

type analyzeRequest struct {
	Features            *Features `json:"features,omitempty"`
	Text                *string   `json:"text,omitempty"`
	HTML                *string   `json:"html,omitempty"`
	URL                 *string   `json:"url,omitempty"`
	Clean               *bool     `json:"clean,omitempty"`
	Xpath               *string   `json:"xpath,omitempty"`
	FallbackToRaw       *bool     `json:"fallback_to_raw,omitempty"`
	ReturnAnalyzedText  *bool     `json:"return_analyzed_text,omitempty"`
	Language            *string   `json:"language,omitempty"`
	LimitTextCharacters *int64    `json:"limit_text_characters,omitempty"`
}

func (o AnalyzeOptions) request() *operation.Request {
	h := operationHeaders("analyze")
	h.Set("Content-Type", "application/json")
	return operation.NewRequest("analyze", http.MethodPost, "/v1/analyze", h).
		JSONBody(analyzeRequest{
			Features:            o.Features,
			Text:                o.Text,
			HTML:                o.HTML,
			URL:                 o.URL,
			Clean:               o.Clean,
			Xpath:               o.Xpath,
			FallbackToRaw:       o.FallbackToRaw,
			ReturnAnalyzedText:  o.ReturnAnalyzedText,
			Language:            o.Language,
			LimitTextCharacters: o.LimitTextCharacters,
		})
}

// Analyze analyzes text, HTML or a public webpage for the requested features.
func (nlu *NaturalLanguageUnderstandingV1) Analyze(ctx context.Context, opts *AnalyzeOptions) *operation.Future[AnalysisResults] {
	o := operation.Deref(opts)
	return operation.Invoke[AnalysisResults](ctx, nlu.Invoker(), o, o.request)
}

// AnalyzeWithCallback is Analyze completed through cb.
func (nlu *NaturalLanguageUnderstandingV1) AnalyzeWithCallback(ctx context.Context, opts *AnalyzeOptions, cb operation.Callback[AnalysisResults]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[AnalysisResults](ctx, nlu.Invoker(), o, o.request, cb)
}

// ListModelsOptions are the parameters of ListModels.
type ListModelsOptions struct {
	operation.CallOptions
}

func (o ListModelsOptions) request() *operation.Request {
	return operation.NewRequest("listModels", http.MethodGet, "/v1/models", operationHeaders("listModels"))
}

// ListModels lists the custom models deployed to the service instance. opts may be nil.
func (nlu *NaturalLanguageUnderstandingV1) ListModels(ctx context.Context, opts *ListModelsOptions) *operation.Future[ListModelsResults] {
	o := operation.Deref(opts)
	return operation.Invoke[ListModelsResults](ctx, nlu.Invoker(), o, o.request)
}

// ListModelsWithCallback is ListModels completed through cb.
func (nlu *NaturalLanguageUnderstandingV1) ListModelsWithCallback(ctx context.Context, opts *ListModelsOptions, cb operation.Callback[ListModelsResults]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[ListModelsResults](ctx, nlu.Invoker(), o, o.request, cb)
}

// DeleteModelOptions are the parameters of DeleteModel.
type DeleteModelOptions struct {
	operation.CallOptions

	// ModelID is the model to delete. Required.
	ModelID *string
}

func (o DeleteModelOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("model_id", o.ModelID)}
}

func (o DeleteModelOptions) request() *operation.Request {
	return operation.NewRequest("deleteModel", http.MethodDelete, "/v1/models/{model_id}", operationHeaders("deleteModel")).
		PathParam("model_id", o.ModelID)
}

// DeleteModel deletes a custom model.
func (nlu *NaturalLanguageUnderstandingV1) DeleteModel(ctx context.Context, opts *DeleteModelOptions) *operation.Future[DeleteModelResults] {
	o := operation.Deref(opts)
	return operation.Invoke[DeleteModelResults](ctx, nlu.Invoker(), o, o.request)
}

// DeleteModelWithCallback is DeleteModel completed through cb.
func (nlu *NaturalLanguageUnderstandingV1) DeleteModelWithCallback(ctx context.Context, opts *DeleteModelOptions, cb operation.Callback[DeleteModelResults]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[DeleteModelResults](ctx, nlu.Invoker(), o, o.request, cb)
}
