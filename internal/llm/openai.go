package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

const (
	defaultChatTimeout     = 2 * time.Minute
	defaultChatTemperature = 0.2
	systemPrompt           = "You summarize video transcripts faithfully and concisely. Use only information present in the text."
	contextLengthCode      = "context_length_exceeded"
)

var (
	requestedTokensRe = regexp.MustCompile(`(?i)(?:resulted in|requested) (\d+) tokens`)
	contextLimitRe    = regexp.MustCompile(`(?i)maximum context length`)
)

// NewOpenAIClient builds a client against api.openai.com, or baseURL when set.
// The model is chosen per request.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		client:  &cli,
		timeout: defaultChatTimeout,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c == nil || c.client == nil {
		return Response{}, fmt.Errorf("nil openai client")
	}
	if req.Model == "" {
		return Response{}, fmt.Errorf("openai: model required")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    buildMessages(systemPrompt, req.Prompt),
		Temperature: openai.Float(defaultChatTemperature),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return Response{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("openai: no choices returned")
	}
	return Response{Content: resp.Choices[0].Message.Content}, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// classifyError turns the service's context-length rejection into a
// *CapacityError. This is the only place that reads service error text.
func classifyError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.Code != contextLengthCode &&
		apiErr.StatusCode != http.StatusRequestEntityTooLarge &&
		!contextLimitRe.MatchString(apiErr.Message) {
		return err
	}
	return &CapacityError{RequestedTokens: requestedTokens(apiErr.Message), Err: err}
}

func requestedTokens(message string) int {
	m := requestedTokensRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
