package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	CommentTypeName = "Comment"

	AttachedCommentRelationship = "AttachedComment"
	AcceptedAnswerRelationship  = "AcceptedAnswer"
)

// Comment types.
const (
	StandardComment = "STANDARD_COMMENT"
	Question        = "QUESTION"
	Answer          = "ANSWER"
	Suggestion      = "SUGGESTION"
	UsageExperience = "USAGE_EXPERIENCE"
	OtherComment    = "OTHER"
)

type CommentProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	CommentText          string            `json:"commentText,omitempty"`
	CommentType          string            `json:"commentType,omitempty"`
	IsPublic             bool              `json:"isPublic,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

// CommentHandler manages comments attached to elements and replies to other
// comments. A comment's anchor is the element or comment it is attached to.
type CommentHandler struct {
	*ElementHandler[CommentProperties]
}

func NewCommentHandler(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *CommentHandler {
	h := &CommentHandler{newElementHandler[CommentProperties](client, logger, maxPageSize, category{
		typeName:         CommentTypeName,
		required:         []string{"commentText", "commentType"},
		nameProperties:   []string{qualifiedName},
		searchProperties: []string{qualifiedName, "commentText"},
		relationships:    []string{AttachedCommentRelationship, AcceptedAnswerRelationship},
		anchor:           AttachedCommentRelationship,
		validators: []func(string, map[string]any) error{
			oneOf("commentType", StandardComment, Question, Answer, Suggestion, UsageExperience, OtherComment),
		},
	})}
	h.ops = map[string]operation{
		// GUID is the element commented on.
		"attached-comments": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return elementsResult(h.GetAttachedComments(ctx, userID, a.GUID, a.Options))
		},
		"replies": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return elementsResult(h.GetReplies(ctx, userID, a.GUID, a.Options))
		},
		// GUID is the question, OtherGUID the answer.
		"accept-answer": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return linkResult(h.SetupAcceptedAnswer(ctx, userID, a.GUID, a.OtherGUID))
		},
		"clear-answer": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return doneResult(h.ClearAcceptedAnswer(ctx, userID, a.GUID, a.OtherGUID))
		},
	}
	return h
}

// GetAttachedComments lists the comments attached directly to elementGUID.
func (h *CommentHandler) GetAttachedComments(ctx context.Context, userID, elementGUID string,
	opts models.SearchOptions) ([]*Element[CommentProperties], error) {

	return h.relatedOfType(ctx, "getAttachedComments", userID, elementGUID, models.End1, AttachedCommentRelationship, opts)
}

// GetReplies lists the comments attached to commentGUID.
func (h *CommentHandler) GetReplies(ctx context.Context, userID, commentGUID string,
	opts models.SearchOptions) ([]*Element[CommentProperties], error) {

	if _, err := h.GetElement(ctx, userID, commentGUID); err != nil {
		return nil, err
	}
	return h.relatedOfType(ctx, "getCommentReplies", userID, commentGUID, models.End1, AttachedCommentRelationship, opts)
}

// SetupAcceptedAnswer marks answerGUID as the accepted answer to
// questionGUID. Both must be comments.
func (h *CommentHandler) SetupAcceptedAnswer(ctx context.Context, userID, questionGUID, answerGUID string) (string, error) {
	for _, guid := range []string{questionGUID, answerGUID} {
		if _, err := h.GetElement(ctx, userID, guid); err != nil {
			return "", err
		}
	}
	return h.Link(ctx, userID, AcceptedAnswerRelationship, questionGUID, answerGUID, nil)
}

func (h *CommentHandler) ClearAcceptedAnswer(ctx context.Context, userID, questionGUID, answerGUID string) error {
	return h.Detach(ctx, userID, AcceptedAnswerRelationship, questionGUID, answerGUID)
}
