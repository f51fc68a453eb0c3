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

// Package visualrecognitionv3 is a client for Visual Recognition v3, which classifies images with
// built-in and custom classifiers and detects faces.
package visualrecognitionv3

import (
	"context"
	"io"
	"net/http"
	"sort"

	"github.com/aiservices/aiservices-go/aiservices-go-client/httpclient"
	"github.com/aiservices/aiservices-go/aiservices-go-client/operation"
	"github.com/aiservices/aiservices-go/aiservices-go-client/service"
	"github.com/aiservices/aiservices-go/aiservices-go-contract/sdkheaders"
)

const (
	// DefaultServiceName is the name used for credential discovery and SDK analytics.
	DefaultServiceName = "watson_vision_combined"
	// DefaultServiceVersion is the API major version this client targets.
	DefaultServiceVersion = "v3"
	// DefaultServiceURL is used when neither the configuration nor discovered credentials name one.
	DefaultServiceURL = "https://gateway.watsonplatform.net/visual-recognition/api"

	contentTypeJSON        = "application/json"
	contentTypeMultipart   = "multipart/form-data"
	contentTypeOctetStream = "application/octet-stream"
)

// Languages accepted in the Accept-Language header of Classify and DetectFaces.
const (
	AcceptLanguageEn   = "en"
	AcceptLanguageAr   = "ar"
	AcceptLanguageDe   = "de"
	AcceptLanguageEs   = "es"
	AcceptLanguageFr   = "fr"
	AcceptLanguageIt   = "it"
	AcceptLanguageJa   = "ja"
	AcceptLanguageKo   = "ko"
	AcceptLanguagePtBr = "pt-br"
	AcceptLanguageZhCn = "zh-cn"
	AcceptLanguageZhTw = "zh-tw"
)

// VisualRecognitionV3 exposes the Visual Recognition operations.
type VisualRecognitionV3 struct {
	*service.BaseService
}

// New returns a client for conf. conf.Version is required; the service name, service version and
// URL default to the package constants.
func New(conf service.Config, params ...httpclient.ClientParam) (*VisualRecognitionV3, error) {
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
	return &VisualRecognitionV3{BaseService: base}, nil
}

func operationHeaders(operationID, accept string) http.Header {
	h := sdkheaders.ForOperation(DefaultServiceName, DefaultServiceVersion, operationID)
	h.Set("Accept", accept)
	return h
}

func multipartRequest(operationID, pathTemplate string) *operation.Request {
	h := operationHeaders(operationID, contentTypeJSON)
	h.Set("Content-Type", contentTypeMultipart)
	return operation.NewRequest(operationID, http.MethodPost, pathTemplate, h)
}

// addExamples adds one {class}_positive_examples part per class, in class name order, and the negative examples.
func addExamples(r *operation.Request, positive map[string]io.Reader, negative io.Reader, negativeFilename *string) *operation.Request {
	classes := make([]string, 0, len(positive))
	for class := range positive {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	octetStream := contentTypeOctetStream
	for _, class := range classes {
		name := class + "_positive_examples"
		filename := name + ".zip"
		r.FormFile(name, positive[class], &filename, &octetStream)
	}
	return r.FormFile("negative_examples", negative, negativeFilename, &octetStream)
}

// ClassifyOptions are the parameters of Classify. Provide ImagesFile, URL or both.
type ClassifyOptions struct {
	operation.CallOptions

	// ImagesFile is an image file or a .zip file of images.
	ImagesFile io.Reader
	// ImagesFilename is the filename sent with ImagesFile.
	ImagesFilename *string
	// ImagesFileContentType is the content type of ImagesFile.
	ImagesFileContentType *string
	// URL of an image to classify.
	URL *string
	// Threshold is the minimum score a class must have to be returned.
	Threshold *float32
	// Owners restricts the classifiers to "IBM", "me" or both.
	Owners []string
	// ClassifierIDs names the classifiers to apply.
	ClassifierIDs []string
	// AcceptLanguage selects the language of the returned class names.
	AcceptLanguage *string
}

func (o ClassifyOptions) request() *operation.Request {
	return multipartRequest("classify", "/v3/classify").
		Header("Accept-Language", o.AcceptLanguage).
		FormFile("images_file", o.ImagesFile, o.ImagesFilename, o.ImagesFileContentType).
		FormField("url", o.URL).
		FormField("threshold", o.Threshold).
		FormField("owners", o.Owners).
		FormField("classifier_ids", o.ClassifierIDs)
}

// Classify classifies images with built-in or custom classifiers. opts may be nil.
func (vr *VisualRecognitionV3) Classify(ctx context.Context, opts *ClassifyOptions) *operation.Future[ClassifiedImages] {
	o := operation.Deref(opts)
	return operation.Invoke[ClassifiedImages](ctx, vr.Invoker(), o, o.request)
}

// ClassifyWithCallback is Classify completed through cb.
func (vr *VisualRecognitionV3) ClassifyWithCallback(ctx context.Context, opts *ClassifyOptions, cb operation.Callback[ClassifiedImages]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[ClassifiedImages](ctx, vr.Invoker(), o, o.request, cb)
}

// DetectFacesOptions are the parameters of DetectFaces.
type DetectFacesOptions struct {
	operation.CallOptions

	ImagesFile            io.Reader
	ImagesFilename        *string
	ImagesFileContentType *string
	URL                   *string
	AcceptLanguage        *string
}

func (o DetectFacesOptions) request() *operation.Request {
	return multipartRequest("detectFaces", "/v3/detect_faces").
		Header("Accept-Language", o.AcceptLanguage).
		FormFile("images_file", o.ImagesFile, o.ImagesFilename, o.ImagesFileContentType).
		FormField("url", o.URL)
}

// DetectFaces analyzes and gets data about faces in images. opts may be nil.
func (vr *VisualRecognitionV3) DetectFaces(ctx context.Context, opts *DetectFacesOptions) *operation.Future[DetectedFaces] {
	o := operation.Deref(opts)
	return operation.Invoke[DetectedFaces](ctx, vr.Invoker(), o, o.request)
}

// DetectFacesWithCallback is DetectFaces completed through cb.
func (vr *VisualRecognitionV3) DetectFacesWithCallback(ctx context.Context, opts *DetectFacesOptions, cb operation.Callback[DetectedFaces]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[DetectedFaces](ctx, vr.Invoker(), o, o.request, cb)
}

// CreateClassifierOptions are the parameters of CreateClassifier.
type CreateClassifierOptions struct {
	operation.CallOptions

	// Name of the new classifier. Required.
	Name *string
	// PositiveExamples maps each class name to a .zip file of images depicting it. Required.
	PositiveExamples map[string]io.Reader
	// NegativeExamples is a .zip file of images that depict none of the classes.
	NegativeExamples         io.Reader
	NegativeExamplesFilename *string
}

func (o CreateClassifierOptions) Required() []operation.Requirement {
	return []operation.Requirement{
		operation.Require("name", o.Name),
		operation.RequireMap("positive_examples", o.PositiveExamples),
	}
}

func (o CreateClassifierOptions) request() *operation.Request {
	r := multipartRequest("createClassifier", "/v3/classifiers").FormField("name", o.Name)
	return addExamples(r, o.PositiveExamples, o.NegativeExamples, o.NegativeExamplesFilename)
}

// CreateClassifier trains a new custom classifier on the uploaded examples.
func (vr *VisualRecognitionV3) CreateClassifier(ctx context.Context, opts *CreateClassifierOptions) *operation.Future[Classifier] {
	o := operation.Deref(opts)
	return operation.Invoke[Classifier](ctx, vr.Invoker(), o, o.request)
}

// CreateClassifierWithCallback is CreateClassifier completed through cb.
func (vr *VisualRecognitionV3) CreateClassifierWithCallback(ctx context.Context, opts *CreateClassifierOptions, cb operation.Callback[Classifier]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[Classifier](ctx, vr.Invoker(), o, o.request, cb)
}

// ListClassifiersOptions are the parameters of ListClassifiers.
type ListClassifiersOptions struct {
	operation.CallOptions

	// Verbose returns full classifier details instead of a brief list.
	Verbose *bool
}

func (o ListClassifiersOptions) request() *operation.Request {
	return operation.NewRequest("listClassifiers", http.MethodGet, "/v3/classifiers", operationHeaders("listClassifiers", contentTypeJSON)).
		Query("verbose", o.Verbose)
}

// ListClassifiers lists custom classifiers. opts may be nil.
func (vr *VisualRecognitionV3) ListClassifiers(ctx context.Context, opts *ListClassifiersOptions) *operation.Future[Classifiers] {
	o := operation.Deref(opts)
	return operation.Invoke[Classifiers](ctx, vr.Invoker(), o, o.request)
}

// ListClassifiersWithCallback is ListClassifiers completed through cb.
func (vr *VisualRecognitionV3) ListClassifiersWithCallback(ctx context.Context, opts *ListClassifiersOptions, cb operation.Callback[Classifiers]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[Classifiers](ctx, vr.Invoker(), o, o.request, cb)
}

// GetClassifierOptions are the parameters of GetClassifier.
type GetClassifierOptions struct {
	operation.CallOptions

	ClassifierID *string
}

func (o GetClassifierOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("classifier_id", o.ClassifierID)}
}

func (o GetClassifierOptions) request() *operation.Request {
	return operation.NewRequest("getClassifier", http.MethodGet, "/v3/classifiers/{classifier_id}", operationHeaders("getClassifier", contentTypeJSON)).
		PathParam("classifier_id", o.ClassifierID)
}

// GetClassifier retrieves information about a custom classifier.
func (vr *VisualRecognitionV3) GetClassifier(ctx context.Context, opts *GetClassifierOptions) *operation.Future[Classifier] {
	o := operation.Deref(opts)
	return operation.Invoke[Classifier](ctx, vr.Invoker(), o, o.request)
}

// GetClassifierWithCallback is GetClassifier completed through cb.
func (vr *VisualRecognitionV3) GetClassifierWithCallback(ctx context.Context, opts *GetClassifierOptions, cb operation.Callback[Classifier]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[Classifier](ctx, vr.Invoker(), o, o.request, cb)
}

// UpdateClassifierOptions are the parameters of UpdateClassifier. At least one set of examples should be given.
type UpdateClassifierOptions struct {
	operation.CallOptions

	// ClassifierID is the classifier to update. Required.
	ClassifierID             *string
	PositiveExamples         map[string]io.Reader
	NegativeExamples         io.Reader
	NegativeExamplesFilename *string
}

func (o UpdateClassifierOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("classifier_id", o.ClassifierID)}
}

func (o UpdateClassifierOptions) request() *operation.Request {
	r := multipartRequest("updateClassifier", "/v3/classifiers/{classifier_id}").PathParam("classifier_id", o.ClassifierID)
	return addExamples(r, o.PositiveExamples, o.NegativeExamples, o.NegativeExamplesFilename)
}

// UpdateClassifier adds classes or images to an existing classifier, which is retrained.
func (vr *VisualRecognitionV3) UpdateClassifier(ctx context.Context, opts *UpdateClassifierOptions) *operation.Future[Classifier] {
	o := operation.Deref(opts)
	return operation.Invoke[Classifier](ctx, vr.Invoker(), o, o.request)
}

// UpdateClassifierWithCallback is UpdateClassifier completed through cb.
func (vr *VisualRecognitionV3) UpdateClassifierWithCallback(ctx context.Context, opts *UpdateClassifierOptions, cb operation.Callback[Classifier]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[Classifier](ctx, vr.Invoker(), o, o.request, cb)
}

// DeleteClassifierOptions are the parameters of DeleteClassifier.
type DeleteClassifierOptions struct {
	operation.CallOptions

	ClassifierID *string
}

func (o DeleteClassifierOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("classifier_id", o.ClassifierID)}
}

func (o DeleteClassifierOptions) request() *operation.Request {
	return operation.NewRequest("deleteClassifier", http.MethodDelete, "/v3/classifiers/{classifier_id}", operationHeaders("deleteClassifier", contentTypeJSON)).
		PathParam("classifier_id", o.ClassifierID)
}

// DeleteClassifier deletes a custom classifier.
func (vr *VisualRecognitionV3) DeleteClassifier(ctx context.Context, opts *DeleteClassifierOptions) *operation.Future[Empty] {
	o := operation.Deref(opts)
	return operation.Invoke[Empty](ctx, vr.Invoker(), o, o.request)
}

// DeleteClassifierWithCallback is DeleteClassifier completed through cb.
func (vr *VisualRecognitionV3) DeleteClassifierWithCallback(ctx context.Context, opts *DeleteClassifierOptions, cb operation.Callback[Empty]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[Empty](ctx, vr.Invoker(), o, o.request, cb)
}

// GetCoreMlModelOptions are the parameters of GetCoreMlModel.
type GetCoreMlModelOptions struct {
	operation.CallOptions

	ClassifierID *string
}

func (o GetCoreMlModelOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("classifier_id", o.ClassifierID)}
}

func (o GetCoreMlModelOptions) request() *operation.Request {
	r := operation.NewRequest("getCoreMlModel", http.MethodGet, "/v3/classifiers/{classifier_id}/core_ml_model", operationHeaders("getCoreMlModel", contentTypeOctetStream)).
		PathParam("classifier_id", o.ClassifierID)
	r.ResponseType = operation.ResponseStream
	return r
}

// GetCoreMlModel downloads the Core ML model of a classifier. The caller must close the returned body.
func (vr *VisualRecognitionV3) GetCoreMlModel(ctx context.Context, opts *GetCoreMlModelOptions) *operation.Future[io.ReadCloser] {
	o := operation.Deref(opts)
	return operation.Invoke[io.ReadCloser](ctx, vr.Invoker(), o, o.request)
}

// GetCoreMlModelWithCallback is GetCoreMlModel completed through cb.
func (vr *VisualRecognitionV3) GetCoreMlModelWithCallback(ctx context.Context, opts *GetCoreMlModelOptions, cb operation.Callback[io.ReadCloser]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[io.ReadCloser](ctx, vr.Invoker(), o, o.request, cb)
}

// DeleteUserDataOptions are the parameters of DeleteUserData.
type DeleteUserDataOptions struct {
	operation.CallOptions

	// CustomerID whose labeled data is deleted. Required.
	CustomerID *string
}

func (o DeleteUserDataOptions) Required() []operation.Requirement {
	return []operation.Requirement{operation.Require("customer_id", o.CustomerID)}
}

func (o DeleteUserDataOptions) request() *operation.Request {
	return operation.NewRequest("deleteUserData", http.MethodDelete, "/v3/user_data", operationHeaders("deleteUserData", contentTypeJSON)).
		Query("customer_id", o.CustomerID)
}

// DeleteUserData deletes all data associated with a customer ID.
func (vr *VisualRecognitionV3) DeleteUserData(ctx context.Context, opts *DeleteUserDataOptions) *operation.Future[Empty] {
	o := operation.Deref(opts)
	return operation.Invoke[Empty](ctx, vr.Invoker(), o, o.request)
}

// DeleteUserDataWithCallback is DeleteUserData completed through cb.
func (vr *VisualRecognitionV3) DeleteUserDataWithCallback(ctx context.Context, opts *DeleteUserDataOptions, cb operation.Callback[Empty]) {
	o := operation.Deref(opts)
	operation.InvokeWithCallback[Empty](ctx, vr.Invoker(), o, o.request, cb)
}
