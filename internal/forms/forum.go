package forms

import (
	"fmt"

	"forum/internal/models"
)

// ReportReasonMaxLength bounds the free-text reason of a report.
const ReportReasonMaxLength = 500

var (
	// PostForm accepts the mutable fields of a post.
	PostForm = New("post",
		Field{Name: "title", Label: "Title", Rules: fmt.Sprintf("required,max=%d", models.PostTitleMaxLength)},
		Field{Name: "text", Label: "Text", Rules: "required"},
	)

	// CommentForm accepts the mutable fields of a comment.
	CommentForm = New("comment",
		Field{Name: "text", Label: "Text", Rules: "required"},
	)

	// PostReportForm accepts a report against a post.
	PostReportForm = New("post_report",
		Field{Name: "reason", Label: "Reason", Rules: fmt.Sprintf("required,max=%d", ReportReasonMaxLength)},
	)

	// CommentReportForm accepts a report against a comment.
	CommentReportForm = New("comment_report",
		Field{Name: "reason", Label: "Reason", Rules: fmt.Sprintf("required,max=%d", ReportReasonMaxLength)},
	)
)
