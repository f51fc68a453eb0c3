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

package visualrecognitionv3

// ClassifiedImages is the result of Classify.
type ClassifiedImages struct {
	CustomClasses   *int64            `json:"custom_classes,omitempty"`
	ImagesProcessed *int64            `json:"images_processed,omitempty"`
	Images          []ClassifiedImage `json:"images"`
	Warnings        []WarningInfo     `json:"warnings,omitempty"`
}

// ClassifiedImage holds the classifier results for one image.
type ClassifiedImage struct {
	SourceURL   *string            `json:"source_url,omitempty"`
	ResolvedURL *string            `json:"resolved_url,omitempty"`
	Image       *string            `json:"image,omitempty"`
	Error       *ErrorInfo         `json:"error,omitempty"`
	Classifiers []ClassifierResult `json:"classifiers"`
}

type ClassifierResult struct {
	Name         string        `json:"name"`
	ClassifierID string        `json:"classifier_id"`
	Classes      []ClassResult `json:"classes"`
}

type ClassResult struct {
	ClassName     string  `json:"class_name"`
	Score         float32 `json:"score"`
	TypeHierarchy *string `json:"type_hierarchy,omitempty"`
}

// Classifier describes a custom classifier.
type Classifier struct {
	ClassifierID  string  `json:"classifier_id"`
	Name          string  `json:"name"`
	Owner         *string `json:"owner,omitempty"`
	Status        *string `json:"status,omitempty"`
	CoreMlEnabled *bool   `json:"core_ml_enabled,omitempty"`
	Explanation   *string `json:"explanation,omitempty"`
	Created       *string `json:"created,omitempty"`
	Classes       []Class `json:"classes,omitempty"`
	Retrained     *string `json:"retrained,omitempty"`
	Updated       *string `json:"updated,omitempty"`
}

// Classifier status values.
const (
	ClassifierStatusReady      = "ready"
	ClassifierStatusTraining   = "training"
	ClassifierStatusRetraining = "retraining"
	ClassifierStatusFailed     = "failed"
)

type Class struct {
	ClassName string `json:"class_name"`
}

// Classifiers is the result of ListClassifiers.
type Classifiers struct {
	Classifiers []Classifier `json:"classifiers"`
}

// DetectedFaces is the result of DetectFaces.
type DetectedFaces struct {
	ImagesProcessed int64            `json:"images_processed"`
	Images          []ImageWithFaces `json:"images"`
	Warnings        []WarningInfo    `json:"warnings,omitempty"`
}

type ImageWithFaces struct {
	Faces       []Face     `json:"faces"`
	Image       *string    `json:"image,omitempty"`
	SourceURL   *string    `json:"source_url,omitempty"`
	ResolvedURL *string    `json:"resolved_url,omitempty"`
	Error       *ErrorInfo `json:"error,omitempty"`
}

type Face struct {
	Age          *FaceAge      `json:"age,omitempty"`
	Gender       *FaceGender   `json:"gender,omitempty"`
	FaceLocation *FaceLocation `json:"face_location,omitempty"`
}

// FaceAge is an estimated age range; Min or Max may be absent for open ranges.
type FaceAge struct {
	Min   *int64  `json:"min,omitempty"`
	Max   *int64  `json:"max,omitempty"`
	Score float32 `json:"score"`
}

type FaceGender struct {
	Gender      string  `json:"gender"`
	GenderLabel string  `json:"gender_label"`
	Score       float32 `json:"score"`
}

// FaceLocation is the bounding box of a face in pixels.
type FaceLocation struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

// ErrorInfo describes why an image could not be processed.
type ErrorInfo struct {
	Code        int64  `json:"code"`
	Description string `json:"description"`
	ErrorID     string `json:"error_id"`
}

// WarningInfo describes a problem that did not stop processing.
type WarningInfo struct {
	WarningID   string `json:"warning_id"`
	Description string `json:"description"`
}

// Empty is the result of operations that return no data.
type Empty struct{}
