package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sahilchouksey/scholarhub/config"
	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/logger"
)

// checkjobs prints recent scheduled job runs and the moderation backlog
func main() {
	limit := flag.Int("limit", 20, "number of job runs to show")
	job := flag.String("job", "", "only show runs of this job")
	flag.Parse()

	if err := config.LoadENV(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	env, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := database.StartGORM(env, logger.Nop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	db := store.GetDB()

	separator := strings.Repeat("=", 40)
	fmt.Println(separator)
	fmt.Println("SCHEDULED JOBS STATUS CHECK")
	fmt.Println(separator)

	q := db.Order("started_at DESC").Limit(*limit)
	if *job != "" {
		q = q.Where("job_name = ?", *job)
	}
	var runs []model.CronJobLog
	if err := q.Find(&runs).Error; err != nil {
		log.Fatalf("Failed to fetch job runs: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("\n❌ No job runs found in database")
	} else {
		fmt.Printf("\n📋 Found %d job runs:\n\n", len(runs))
		for _, run := range runs {
			statusIcon := "🔄"
			switch run.Status {
			case "completed":
				statusIcon = "✅"
			case "failed":
				statusIcon = "❌"
			}
			fmt.Printf("%s %-24s %s  %6dms  %s%s\n",
				statusIcon, run.JobName, run.StartedAt.Format(time.RFC3339), run.DurationMs, run.Message, run.ErrorMsg)
		}
	}

	var pending int64
	var oldest model.Upload
	db.Model(&model.Upload{}).Where("status = ?", model.UploadStatusPending).Count(&pending)
	fmt.Printf("\n📥 Uploads awaiting moderation: %d\n", pending)
	if pending > 0 {
		if err := db.Where("status = ?", model.UploadStatusPending).Order("created_at").First(&oldest).Error; err == nil {
			fmt.Printf("   oldest: #%d %q, waiting %s\n", oldest.ID, oldest.Title, time.Since(oldest.CreatedAt).Round(time.Minute))
		}
	}
}
