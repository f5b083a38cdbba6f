package domain

import "time"

// Question is a posted question.
type Question struct {
	ID         string    `json:"id"`
	Title      string    `json:"questionTitle"`
	Body       string    `json:"questionBody"`
	Tags       []string  `json:"questionTags"`
	UserPosted string    `json:"userPosted"`
	UserID     string    `json:"userId"`
	HasVideo   bool      `json:"hasVideo"`
	VideoURL   string    `json:"video,omitempty"`
	UpVotes    []string  `json:"upVote"`
	DownVotes  []string  `json:"downVote"`
	AskedOn    time.Time `json:"askedOn"`
}

// AskQuestionRequest is the validated input for posting a question.
type AskQuestionRequest struct {
	Title      string   `validate:"required,max=300"`
	Body       string   `validate:"required"`
	Tags       []string `validate:"max=10"`
	UserPosted string   `validate:"required"`
}

// EditQuestionRequest updates non-empty fields.
type EditQuestionRequest struct {
	Title string   `json:"questionTitle"`
	Body  string   `json:"questionBody"`
	Tags  []string `json:"questionTags"`
}

// VoteRequest toggles an up or down vote.
type VoteRequest struct {
	Value string `json:"value" validate:"required,oneof=upvote downvote"`
}

// AskQuestionResponse reports the created question and remaining quota.
type AskQuestionResponse struct {
	Message            string    `json:"message"`
	Question           *Question `json:"question"`
	QuestionsRemaining int       `json:"questionsRemaining"` // -1 = unlimited
}

// ApplyVote toggles userID's vote. Voting one way clears the opposite vote.
func ApplyVote(q *Question, userID, value string) {
	up := indexOf(q.UpVotes, userID)
	down := indexOf(q.DownVotes, userID)
	switch value {
	case "upvote":
		if down >= 0 {
			q.DownVotes = removeAt(q.DownVotes, down)
		}
		if up >= 0 {
			q.UpVotes = removeAt(q.UpVotes, up)
		} else {
			q.UpVotes = append(q.UpVotes, userID)
		}
	case "downvote":
		if up >= 0 {
			q.UpVotes = removeAt(q.UpVotes, up)
		}
		if down >= 0 {
			q.DownVotes = removeAt(q.DownVotes, down)
		} else {
			q.DownVotes = append(q.DownVotes, userID)
		}
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func removeAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
