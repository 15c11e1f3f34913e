package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/repoeval_go_server/internal/model"
	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
	"github.com/qs3c/repoeval_go_server/internal/pkg/lock"
	"github.com/qs3c/repoeval_go_server/internal/pkg/progress"
	"github.com/qs3c/repoeval_go_server/internal/repository"
)

var (
	ErrAnalysisInProgress = errors.New("该仓库正在分析中，请稍后再试")
	ErrRepositoryNotFound = errors.New("仓库不存在")
	ErrAnalysisNotFound   = errors.New("分析记录不存在")
	ErrPermissionDenied   = errors.New("无权访问该资源")
	ErrNoAnalysisResult   = errors.New("该仓库还没有分析结果，无法公开")
)

// 推给前端的失败消息统一用这句，具体原因只进日志
const analysisFailedMessage = "分析失败，请稍后重试"

// 异步分析的兜底超时，略小于锁的 300 秒租约
const asyncAnalysisTimeout = 280 * time.Second

const timeLayout = "2006-01-02 15:04:05"

// AnalysisService 分析编排：加锁、采集、评分、落库、推进度
type AnalysisService struct {
	repoRepo     *repository.RepositoryRepository
	analysisRepo *repository.AnalysisRepository
	dataService  *RepoDataService
	evalService  *EvaluationService
	lockManager  *lock.Manager
	hub          *progress.Hub
}

func NewAnalysisService(
	repoRepo *repository.RepositoryRepository,
	analysisRepo *repository.AnalysisRepository,
	dataService *RepoDataService,
	evalService *EvaluationService,
	lockManager *lock.Manager,
	hub *progress.Hub,
) *AnalysisService {
	return &AnalysisService{
		repoRepo:     repoRepo,
		analysisRepo: analysisRepo,
		dataService:  dataService,
		evalService:  evalService,
		lockManager:  lockManager,
		hub:          hub,
	}
}

// Analyze 同步分析一个仓库，完成后返回仓库 ID
// 同一用户对同一仓库同时只允许一次分析
func (s *AnalysisService) Analyze(ctx context.Context, userID int64, githubURL string) (*dto.AnalyzeResponse, error) {
	owner, repo, err := ParseGithubURL(githubURL)
	if err != nil {
		return nil, err
	}
	normalizedURL := fmt.Sprintf("https://github.com/%s/%s", owner, repo)

	lockKey := fmt.Sprintf("%d:%s", userID, normalizedURL)
	if !s.lockManager.TryLock(ctx, lockKey) {
		return nil, ErrAnalysisInProgress
	}

	result, err := s.runLocked(ctx, userID, owner, repo, normalizedURL, lockKey)
	if err != nil {
		return nil, err
	}
	return &dto.AnalyzeResponse{RepositoryID: result.RepositoryID}, nil
}

// AnalyzeAsync 在当前请求里抢锁，抢不到立即返回冲突错误
// 抢到后分析在后台执行，结果通过 WebSocket 推送
func (s *AnalysisService) AnalyzeAsync(ctx context.Context, userID int64, githubURL string) error {
	owner, repo, err := ParseGithubURL(githubURL)
	if err != nil {
		return err
	}
	normalizedURL := fmt.Sprintf("https://github.com/%s/%s", owner, repo)

	lockKey := fmt.Sprintf("%d:%s", userID, normalizedURL)
	if !s.lockManager.TryLock(ctx, lockKey) {
		return ErrAnalysisInProgress
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), asyncAnalysisTimeout)
		defer cancel()

		if _, err := s.runLocked(runCtx, userID, owner, repo, normalizedURL, lockKey); err != nil {
			log.Printf("后台分析失败 user=%d url=%s: %v", userID, githubURL, err)
		}
	}()
	return nil
}

// runLocked 执行已持锁的分析流水线，结束时释放锁并推送结果
// 推给前端的失败消息不带具体原因，原因只写日志
func (s *AnalysisService) runLocked(ctx context.Context, userID int64, owner, repo, normalizedURL, lockKey string) (*model.AnalysisResult, error) {
	// 无论成功失败都要释放锁
	defer func() {
		if err := s.lockManager.Release(context.Background(), lockKey); err != nil {
			log.Printf("释放分析锁失败 key=%s: %v", lockKey, err)
		}
	}()

	result, err := s.runAnalysis(ctx, userID, owner, repo, normalizedURL, lockKey)
	if err != nil {
		log.Printf("分析失败 user=%d repo=%s/%s: %v", userID, owner, repo, err)
		s.hub.Publish(userID, progress.EventError, analysisFailedMessage)
		return nil, err
	}

	s.hub.Publish(userID, progress.EventComplete,
		fmt.Sprintf("分析完成，总分 %d", result.Score.TotalScore()))
	return result, nil
}

func (s *AnalysisService) runAnalysis(ctx context.Context, userID int64, owner, repo, normalizedURL, lockKey string) (*model.AnalysisResult, error) {
	notify := func(message string) {
		s.hub.Publish(userID, progress.EventStatus, message)
	}

	collected, err := s.dataService.Collect(ctx, owner, repo, notify)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, err
	}

	// 采集可能耗时很久，进入评分前先给锁续期
	if !s.lockManager.Refresh(ctx, lockKey) {
		log.Printf("分析锁续期未生效 key=%s", lockKey)
	}

	record, err := s.upsertRepository(userID, normalizedURL, collected)
	if err != nil {
		return nil, err
	}

	notify("正在进行 AI 评分")
	result, err := s.evalService.EvaluateAndSave(ctx, record.ID, collected.Data)
	if err != nil {
		return nil, err
	}

	if !s.lockManager.Refresh(ctx, lockKey) {
		log.Printf("分析锁续期未生效 key=%s", lockKey)
	}
	return result, nil
}

// upsertRepository 同一用户同一仓库只保留一条记录
// 已软删除的记录复活并更新，新的分析版本追加在原记录上
func (s *AnalysisService) upsertRepository(userID int64, normalizedURL string, collected *CollectResult) (*model.Repository, error) {
	record, err := s.repoRepo.GetByHTMLURLAndUserID(normalizedURL, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		record = &model.Repository{
			UserID:  userID,
			HTMLURL: normalizedURL,
		}
		applyRepoInfo(record, collected)
		if err := s.repoRepo.Create(record); err != nil {
			return nil, err
		}
		return record, nil
	}

	applyRepoInfo(record, collected)
	record.Deleted = false
	if err := s.repoRepo.Update(record); err != nil {
		return nil, err
	}
	return record, nil
}

func applyRepoInfo(record *model.Repository, collected *CollectResult) {
	record.Name = collected.Info.FullName
	record.Description = collected.Info.Description
	record.MainBranch = collected.Info.DefaultBranch
	record.Languages = collected.Languages
}

// ListRepositories 用户已分析的仓库列表
func (s *AnalysisService) ListRepositories(userID int64) ([]dto.RepositoryItem, error) {
	repos, err := s.repoRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RepositoryItem, 0, len(repos))
	for _, r := range repos {
		items = append(items, toRepositoryItem(r))
	}
	return items, nil
}

// History 仓库的分析版本历史，最新版本号最大
// 非拥有者只能查看公开仓库
func (s *AnalysisService) History(userID, repositoryID int64) (*dto.HistoryResponse, error) {
	record, err := s.visibleRepository(userID, repositoryID)
	if err != nil {
		return nil, err
	}

	results, err := s.analysisRepo.ListByRepositoryID(repositoryID)
	if err != nil {
		return nil, err
	}

	versions := make([]dto.AnalysisVersion, 0, len(results))
	total := len(results)
	for i, r := range results {
		v := dto.AnalysisVersion{
			AnalysisID: r.ID,
			Version:    total - i,
			Summary:    r.Summary,
			CreateDate: r.CreateDate.Format(timeLayout),
		}
		if r.Score != nil {
			v.TotalScore = r.Score.TotalScore()
		}
		versions = append(versions, v)
	}

	item := toRepositoryItem(record)
	return &dto.HistoryResponse{
		Repository: &item,
		Versions:   versions,
	}, nil
}

// Detail 单次分析的完整结果
func (s *AnalysisService) Detail(userID, analysisID int64) (*dto.AnalysisDetail, error) {
	result, err := s.analysisRepo.GetByID(analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}

	if _, err := s.visibleRepository(userID, result.RepositoryID); err != nil {
		return nil, err
	}

	detail := &dto.AnalysisDetail{
		AnalysisID:   result.ID,
		RepositoryID: result.RepositoryID,
		Summary:      result.Summary,
		Strengths:    result.Strengths,
		Improvements: result.Improvements,
		CreateDate:   result.CreateDate.Format(timeLayout),
	}
	if result.Score != nil {
		detail.Score = toScoreDetail(result.Score)
	}
	return detail, nil
}

// DeleteRepository 软删除仓库及其全部分析版本，仅拥有者可操作
func (s *AnalysisService) DeleteRepository(userID, repositoryID int64) error {
	record, err := s.ownedRepository(userID, repositoryID)
	if err != nil {
		return err
	}
	return s.repoRepo.SoftDelete(record.ID)
}

// DeleteVersion 软删除单个分析版本，仅拥有者可操作
func (s *AnalysisService) DeleteVersion(userID, analysisID int64) error {
	result, err := s.analysisRepo.GetByID(analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}
	if _, err := s.ownedRepository(userID, result.RepositoryID); err != nil {
		return err
	}
	return s.analysisRepo.SoftDelete(analysisID)
}

// SetPublic 切换仓库分析结果的公开状态，仅拥有者可操作
// 没有任何分析结果的仓库不允许公开
func (s *AnalysisService) SetPublic(userID, repositoryID int64, public bool) error {
	record, err := s.ownedRepository(userID, repositoryID)
	if err != nil {
		return err
	}

	if public {
		count, err := s.analysisRepo.CountByRepositoryID(record.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoAnalysisResult
		}
	}
	return s.repoRepo.SetPublic(record.ID, public)
}

// Comparison 用户所有仓库的最新评分对照，没有分析记录的仓库不出现
func (s *AnalysisService) Comparison(userID int64) ([]dto.ComparisonItem, error) {
	repos, err := s.repoRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ComparisonItem, 0, len(repos))
	for _, r := range repos {
		latest, err := s.analysisRepo.GetLatestByRepositoryID(r.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		item := dto.ComparisonItem{
			RepositoryID: r.ID,
			Name:         r.Name,
			HTMLURL:      r.HTMLURL,
			AnalysisID:   latest.ID,
			AnalyzedAt:   latest.CreateDate.Format(timeLayout),
		}
		if latest.Score != nil {
			item.Score = toScoreDetail(latest.Score)
		}
		items = append(items, item)
	}
	return items, nil
}

// ownedRepository 仅拥有者可见
func (s *AnalysisService) ownedRepository(userID, repositoryID int64) (*model.Repository, error) {
	record, err := s.repoRepo.GetByID(repositoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return record, nil
}

// visibleRepository 拥有者或公开仓库可见
func (s *AnalysisService) visibleRepository(userID, repositoryID int64) (*model.Repository, error) {
	record, err := s.repoRepo.GetByID(repositoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepositoryNotFound
		}
		return nil, err
	}
	if record.UserID != userID && !record.PublicRepository {
		return nil, ErrPermissionDenied
	}
	return record, nil
}

func toRepositoryItem(r *model.Repository) dto.RepositoryItem {
	return dto.RepositoryItem{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		HTMLURL:          r.HTMLURL,
		MainBranch:       r.MainBranch,
		PublicRepository: r.PublicRepository,
		Languages:        r.Languages,
		CreatedAt:        r.CreatedAt.Format(timeLayout),
	}
}

func toScoreDetail(score *model.Score) dto.ScoreDetail {
	return dto.ScoreDetail{
		ReadmeScore: score.ReadmeScore,
		TestScore:   score.TestScore,
		CommitScore: score.CommitScore,
		CicdScore:   score.CicdScore,
		TotalScore:  score.TotalScore(),
	}
}
