package reconciliation

import (
	"net/http"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/dto/responses"
	"oppdrag-service/internal/pkg/utils"
	"sync"

	"go.uber.org/zap"
)

// AvstemmingController exposes completed runs for operators. Payloads are
// excluded from the listing; the archived snapshot holds the full messages.
type AvstemmingController struct {
	Log       *zap.Logger
	Repo      contracts.ReconciliationRepository
	RunsLimit int64
}

var (
	avstemmingControllerInstance *AvstemmingController
	onceAvstemmingController     sync.Once
)

func NewAvstemmingController(logger *zap.Logger, repo contracts.ReconciliationRepository, runsLimit int64) *AvstemmingController {
	onceAvstemmingController.Do(func() {
		avstemmingControllerInstance = &AvstemmingController{
			Log:       logger,
			Repo:      repo,
			RunsLimit: runsLimit,
		}
	})
	return avstemmingControllerInstance
}

// HandleListRuns processes GET /v1/avstemming/runs
func (ctrl *AvstemmingController) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := ctrl.Repo.FindRecentRuns(r.Context(), ctrl.RunsLimit)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, "", mapRunsToResponse(runs))
}

func mapRunsToResponse(runs []models.ReconciliationRun) []responses.ReconciliationRun {
	out := make([]responses.ReconciliationRun, 0, len(runs))
	for i := range runs {
		out = append(out, responses.ReconciliationRun{
			RunID:       runs[i].RunID,
			Kind:        string(runs[i].Kind),
			FraOgMed:    runs[i].FraOgMed,
			TilOgMed:    runs[i].TilOgMed,
			RecordCount: runs[i].RecordCount,
			Category:    runs[i].Category,
			CreatedAt:   runs[i].CreatedAt,
		})
	}
	return out
}
