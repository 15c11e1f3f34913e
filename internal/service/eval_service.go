package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/qs3c/repoeval_go_server/internal/model"
	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/repository"
)

var ErrInvalidAiResponse = errors.New("AI 返回的评分结果无法解析")

// 评分上限
const (
	maxReadmeScore = 30
	maxTestScore   = 30
	maxCommitScore = 25
	maxCicdScore   = 15
)

// evaluationResponse 模型必须返回的 JSON 结构，评分收在 scores 对象里
type evaluationResponse struct {
	Summary      string           `json:"summary"`
	Strengths    []string         `json:"strengths"`
	Improvements []string         `json:"improvements"`
	Scores       evaluationScores `json:"scores"`
}

type evaluationScores struct {
	Readme int `json:"readme"`
	Test   int `json:"test"`
	Commit int `json:"commit"`
	Cicd   int `json:"cicd"`
}

// EvaluationService 负责评分：构造提示词、调用网关、解析并落库
type EvaluationService struct {
	gateway      AiGateway
	analysisRepo *repository.AnalysisRepository
}

func NewEvaluationService(gateway AiGateway, analysisRepo *repository.AnalysisRepository) *EvaluationService {
	return &EvaluationService{
		gateway:      gateway,
		analysisRepo: analysisRepo,
	}
}

// EvaluateAndSave 评分并写入一条新的分析版本
func (s *EvaluationService) EvaluateAndSave(ctx context.Context, repositoryID int64, data *dto.RepositoryData) (*model.AnalysisResult, error) {
	prompt, err := buildPrompt(data)
	if err != nil {
		return nil, err
	}

	raw, err := s.gateway.Chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	eval, err := parseEvaluation(raw)
	if err != nil {
		return nil, err
	}

	result := &model.AnalysisResult{
		RepositoryID: repositoryID,
		Summary:      eval.Summary,
		Strengths:    joinBullets(eval.Strengths),
		Improvements: joinBullets(eval.Improvements),
		CreateDate:   time.Now(),
	}
	score := &model.Score{
		ReadmeScore: eval.Scores.Readme,
		TestScore:   eval.Scores.Test,
		CommitScore: eval.Scores.Commit,
		CicdScore:   eval.Scores.Cicd,
	}

	if err := s.analysisRepo.CreateWithScore(result, score); err != nil {
		return nil, err
	}
	result.Score = score
	return result, nil
}

// buildPrompt 特征记录序列化为 JSON 嵌入提示词
func buildPrompt(data *dto.RepositoryData) (string, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Evaluate the quality of the following GitHub repository based on the collected data.\n\n")
	b.WriteString("Repository data:\n")
	b.Write(payload)
	b.WriteString("\n\nScoring rubric (award integer scores only):\n")
	b.WriteString(fmt.Sprintf("- scores.readme: documentation quality, 0-%d\n", maxReadmeScore))
	b.WriteString(fmt.Sprintf("- scores.test: test coverage and practices, 0-%d\n", maxTestScore))
	b.WriteString(fmt.Sprintf("- scores.commit: commit activity and hygiene, 0-%d\n", maxCommitScore))
	b.WriteString(fmt.Sprintf("- scores.cicd: CI/CD and build automation, 0-%d\n", maxCicdScore))
	b.WriteString("\nHARD RULES:\n")
	b.WriteString("1. Respond with a single JSON object, no markdown, no commentary.\n")
	b.WriteString("2. Every score must be an integer within its range.\n")
	b.WriteString("3. If treeTruncated is true, the file listing is incomplete; do not penalize missing files.\n")
	b.WriteString("4. Write summary, strengths and improvements in Chinese.\n")
	b.WriteString("\nJSON schema:\n")
	b.WriteString(`{"summary": "...", "strengths": ["..."], "improvements": ["..."], "scores": {"readme": 0, "test": 0, "commit": 0, "cicd": 0}}`)
	return b.String(), nil
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON 从模型输出里捞出 JSON 对象
// 模型偶尔会包一层 markdown 代码块或附加说明文字
func extractJSON(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "```")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if m := jsonObjectPattern.FindString(cleaned); m != "" {
		return m
	}
	return cleaned
}

func parseEvaluation(raw string) (*evaluationResponse, error) {
	var eval evaluationResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &eval); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAiResponse, err)
	}
	if err := validateScores(&eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func validateScores(eval *evaluationResponse) error {
	checks := []struct {
		name  string
		value int
		max   int
	}{
		{"scores.readme", eval.Scores.Readme, maxReadmeScore},
		{"scores.test", eval.Scores.Test, maxTestScore},
		{"scores.commit", eval.Scores.Commit, maxCommitScore},
		{"scores.cicd", eval.Scores.Cicd, maxCicdScore},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return fmt.Errorf("%w: %s=%d 超出 [0,%d]", ErrInvalidAiResponse, c.name, c.value, c.max)
		}
	}
	return nil
}

func joinBullets(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}
