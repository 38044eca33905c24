package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/apperr"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/scheduler"
)

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary	定时任务列表
//	@Tags		运维
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Failure	403	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/admin/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched := ctxPkg.GetScheduler(c.Request.Context())
	if sched == nil {
		c.JSON(http.StatusOK, gin.H{"jobs": []scheduler.JobInfo{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerRunJob 立即执行一次指定任务.
//
//	@Summary	立即执行任务
//	@Tags		运维
//	@Produce	json
//	@Param		name	path		string	true	"任务名"
//	@Success	202		{object}	map[string]string
//	@Failure	404		{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/admin/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched := ctxPkg.GetScheduler(c.Request.Context())
	if sched == nil {
		writeError(c, apperr.NotFound("scheduler not running"))
		return
	}

	name := c.Param("name")
	if err := sched.RunNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			writeError(c, apperr.NotFound("job not found"))
		} else {
			writeError(c, apperr.Internal("failed to run job", err))
		}

		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": name, "status": "triggered"})
}
