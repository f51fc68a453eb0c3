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

package naturallanguageunderstandingv1

// Features selects what Analyze looks for. Only the non-nil features are analyzed.
type Features struct {
	Concepts      *ConceptsOptions      `json:"concepts,omitempty"`
	Emotion       *EmotionOptions       `json:"emotion,omitempty"`
	Entities      *EntitiesOptions      `json:"entities,omitempty"`
	Keywords      *KeywordsOptions      `json:"keywords,omitempty"`
	Metadata      *MetadataOptions      `json:"metadata,omitempty"`
	Relations     *RelationsOptions     `json:"relations,omitempty"`
	SemanticRoles *SemanticRolesOptions `json:"semantic_roles,omitempty"`
	Sentiment     *SentimentOptions     `json:"sentiment,omitempty"`
	Categories    *CategoriesOptions    `json:"categories,omitempty"`
	Syntax        *SyntaxOptions        `json:"syntax,omitempty"`
}

type CategoriesOptions struct {
	Explanation *bool   `json:"explanation,omitempty"`
	Limit       *int64  `json:"limit,omitempty"`
	Model       *string `json:"model,omitempty"`
}

type ConceptsOptions struct {
	Limit *int64 `json:"limit,omitempty"`
}

type EmotionOptions struct {
	Document *bool    `json:"document,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

type EntitiesOptions struct {
	Limit     *int64  `json:"limit,omitempty"`
	Mentions  *bool   `json:"mentions,omitempty"`
	Model     *string `json:"model,omitempty"`
	Sentiment *bool   `json:"sentiment,omitempty"`
	Emotion   *bool   `json:"emotion,omitempty"`
}

type KeywordsOptions struct {
	Limit     *int64 `json:"limit,omitempty"`
	Sentiment *bool  `json:"sentiment,omitempty"`
	Emotion   *bool  `json:"emotion,omitempty"`
}

// MetadataOptions has no fields; a non-nil value requests document metadata for URL and HTML input.
type MetadataOptions struct{}

type RelationsOptions struct {
	Model *string `json:"model,omitempty"`
}

type SemanticRolesOptions struct {
	Limit    *int64 `json:"limit,omitempty"`
	Keywords *bool  `json:"keywords,omitempty"`
	Entities *bool  `json:"entities,omitempty"`
}

type SentimentOptions struct {
	Document *bool    `json:"document,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

// SyntaxOptions is experimental.
type SyntaxOptions struct {
	Tokens    *SyntaxOptionsTokens `json:"tokens,omitempty"`
	Sentences *bool                `json:"sentences,omitempty"`
}

type SyntaxOptionsTokens struct {
	Lemma        *bool `json:"lemma,omitempty"`
	PartOfSpeech *bool `json:"part_of_speech,omitempty"`
}

// AnalysisResults is the result of Analyze.
type AnalysisResults struct {
	Language      *string                  `json:"language,omitempty"`
	AnalyzedText  *string                  `json:"analyzed_text,omitempty"`
	RetrievedURL  *string                  `json:"retrieved_url,omitempty"`
	Usage         *AnalysisResultsUsage    `json:"usage,omitempty"`
	Concepts      []ConceptsResult         `json:"concepts,omitempty"`
	Entities      []EntitiesResult         `json:"entities,omitempty"`
	Keywords      []KeywordsResult         `json:"keywords,omitempty"`
	Categories    []CategoriesResult       `json:"categories,omitempty"`
	Emotion       *EmotionResult           `json:"emotion,omitempty"`
	Metadata      *AnalysisResultsMetadata `json:"metadata,omitempty"`
	Relations     []RelationsResult        `json:"relations,omitempty"`
	SemanticRoles []SemanticRolesResult    `json:"semantic_roles,omitempty"`
	Sentiment     *SentimentResult         `json:"sentiment,omitempty"`
	Syntax        *SyntaxResult            `json:"syntax,omitempty"`
}

type AnalysisResultsMetadata struct {
	Authors         []Author `json:"authors,omitempty"`
	PublicationDate *string  `json:"publication_date,omitempty"`
	Title           *string  `json:"title,omitempty"`
	Image           *string  `json:"image,omitempty"`
	Feeds           []Feed   `json:"feeds,omitempty"`
}

type AnalysisResultsUsage struct {
	Features       *int64 `json:"features,omitempty"`
	TextCharacters *int64 `json:"text_characters,omitempty"`
	TextUnits      *int64 `json:"text_units,omitempty"`
}

type Author struct {
	Name *string `json:"name,omitempty"`
}

type Feed struct {
	Link *string `json:"link,omitempty"`
}

type CategoriesResult struct {
	Label       *string                      `json:"label,omitempty"`
	Score       *float64                     `json:"score,omitempty"`
	Explanation *CategoriesResultExplanation `json:"explanation,omitempty"`
}

type CategoriesResultExplanation struct {
	RelevantText []CategoriesRelevantText `json:"relevant_text,omitempty"`
}

type CategoriesRelevantText struct {
	Text *string `json:"text,omitempty"`
}

type ConceptsResult struct {
	Text            *string  `json:"text,omitempty"`
	Relevance       *float64 `json:"relevance,omitempty"`
	DbpediaResource *string  `json:"dbpedia_resource,omitempty"`
}

type DisambiguationResult struct {
	Name            *string  `json:"name,omitempty"`
	DbpediaResource *string  `json:"dbpedia_resource,omitempty"`
	Subtype         []string `json:"subtype,omitempty"`
}

type EmotionResult struct {
	Document *DocumentEmotionResults  `json:"document,omitempty"`
	Targets  []TargetedEmotionResults `json:"targets,omitempty"`
}

type DocumentEmotionResults struct {
	Emotion *EmotionScores `json:"emotion,omitempty"`
}

type TargetedEmotionResults struct {
	Text    *string        `json:"text,omitempty"`
	Emotion *EmotionScores `json:"emotion,omitempty"`
}

// EmotionScores are scores from 0 to 1 for each emotion.
type EmotionScores struct {
	Anger   *float64 `json:"anger,omitempty"`
	Disgust *float64 `json:"disgust,omitempty"`
	Fear    *float64 `json:"fear,omitempty"`
	Joy     *float64 `json:"joy,omitempty"`
	Sadness *float64 `json:"sadness,omitempty"`
}

type EntitiesResult struct {
	Type           *string                  `json:"type,omitempty"`
	Text           *string                  `json:"text,omitempty"`
	Relevance      *float64                 `json:"relevance,omitempty"`
	Confidence     *float64                 `json:"confidence,omitempty"`
	Mentions       []EntityMention          `json:"mentions,omitempty"`
	Count          *int64                   `json:"count,omitempty"`
	Emotion        *EmotionScores           `json:"emotion,omitempty"`
	Sentiment      *FeatureSentimentResults `json:"sentiment,omitempty"`
	Disambiguation *DisambiguationResult    `json:"disambiguation,omitempty"`
}

type EntityMention struct {
	Text       *string  `json:"text,omitempty"`
	Location   []int64  `json:"location,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type FeatureSentimentResults struct {
	Score *float64 `json:"score,omitempty"`
}

type KeywordsResult struct {
	Count     *int64                   `json:"count,omitempty"`
	Relevance *float64                 `json:"relevance,omitempty"`
	Text      *string                  `json:"text,omitempty"`
	Emotion   *EmotionScores           `json:"emotion,omitempty"`
	Sentiment *FeatureSentimentResults `json:"sentiment,omitempty"`
}

type RelationsResult struct {
	Score     *float64           `json:"score,omitempty"`
	Sentence  *string            `json:"sentence,omitempty"`
	Type      *string            `json:"type,omitempty"`
	Arguments []RelationArgument `json:"arguments,omitempty"`
}

type RelationArgument struct {
	Entities []RelationEntity `json:"entities,omitempty"`
	Location []int64          `json:"location,omitempty"`
	Text     *string          `json:"text,omitempty"`
}

type RelationEntity struct {
	Text *string `json:"text,omitempty"`
	Type *string `json:"type,omitempty"`
}

type SemanticRolesResult struct {
	Sentence *string                     `json:"sentence,omitempty"`
	Subject  *SemanticRolesResultSubject `json:"subject,omitempty"`
	Action   *SemanticRolesResultAction  `json:"action,omitempty"`
	Object   *SemanticRolesResultObject  `json:"object,omitempty"`
}

type SemanticRolesResultSubject struct {
	Text     *string                `json:"text,omitempty"`
	Entities []SemanticRolesEntity  `json:"entities,omitempty"`
	Keywords []SemanticRolesKeyword `json:"keywords,omitempty"`
}

type SemanticRolesResultAction struct {
	Text       *string            `json:"text,omitempty"`
	Normalized *string            `json:"normalized,omitempty"`
	Verb       *SemanticRolesVerb `json:"verb,omitempty"`
}

type SemanticRolesResultObject struct {
	Text     *string                `json:"text,omitempty"`
	Keywords []SemanticRolesKeyword `json:"keywords,omitempty"`
}

type SemanticRolesEntity struct {
	Type *string `json:"type,omitempty"`
	Text *string `json:"text,omitempty"`
}

type SemanticRolesKeyword struct {
	Text *string `json:"text,omitempty"`
}

type SemanticRolesVerb struct {
	Text  *string `json:"text,omitempty"`
	Tense *string `json:"tense,omitempty"`
}

type SentimentResult struct {
	Document *DocumentSentimentResults  `json:"document,omitempty"`
	Targets  []TargetedSentimentResults `json:"targets,omitempty"`
}

type DocumentSentimentResults struct {
	Label *string  `json:"label,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

type TargetedSentimentResults struct {
	Text  *string  `json:"text,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

type SyntaxResult struct {
	Tokens    []TokenResult    `json:"tokens,omitempty"`
	Sentences []SentenceResult `json:"sentences,omitempty"`
}

type TokenResult struct {
	Text         *string `json:"text,omitempty"`
	PartOfSpeech *string `json:"part_of_speech,omitempty"`
	Location     []int64 `json:"location,omitempty"`
	Lemma        *string `json:"lemma,omitempty"`
}

type SentenceResult struct {
	Text     *string `json:"text,omitempty"`
	Location []int64 `json:"location,omitempty"`
}

// ListModelsResults is the result of ListModels.
type ListModelsResults struct {
	Models []Model `json:"models,omitempty"`
}

// Model describes a custom model deployed from Watson Knowledge Studio.
type Model struct {
	Status             *string `json:"status,omitempty"`
	ModelID            *string `json:"model_id,omitempty"`
	Language           *string `json:"language,omitempty"`
	Description        *string `json:"description,omitempty"`
	WorkspaceID        *string `json:"workspace_id,omitempty"`
	Version            *string `json:"version,omitempty"`
	VersionDescription *string `json:"version_description,omitempty"`
	Created            *string `json:"created,omitempty"`
}

// DeleteModelResults is the result of DeleteModel.
type DeleteModelResults struct {
	Deleted *string `json:"deleted,omitempty"`
}
