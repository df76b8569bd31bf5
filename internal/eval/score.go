package eval

// AgentStats 单个专业 Agent 的得分
type AgentStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Summary 评测汇总
// Wrong 包含调用失败的题目，Errors 只统计调用失败
type Summary struct {
	Total     int                       `json:"total"`
	Correct   int                       `json:"correct"`
	Wrong     int                       `json:"wrong"`
	Errors    int                       `json:"errors"`
	Accuracy  float64                   `json:"accuracy"`
	PerAgent  map[string]AgentStats     `json:"per_agent"`
	Misroutes []Result                  `json:"misroutes,omitempty"`
	Confusion map[string]map[string]int `json:"confusion"`
}

// Summarize 统计正确率、错路由与混淆矩阵
func Summarize(results []Result) Summary {
	s := Summary{
		Total:     len(results),
		PerAgent:  make(map[string]AgentStats),
		Confusion: make(map[string]map[string]int),
	}

	for _, r := range results {
		stats := s.PerAgent[r.Expected]
		stats.Total++
		if r.Correct {
			s.Correct++
			stats.Correct++
		}
		s.PerAgent[r.Expected] = stats

		if r.Error != "" {
			s.Errors++
			continue
		}
		if !r.Correct {
			s.Misroutes = append(s.Misroutes, r)
		}
		row, ok := s.Confusion[r.Expected]
		if !ok {
			row = make(map[string]int)
			s.Confusion[r.Expected] = row
		}
		row[r.Actual]++
	}

	s.Wrong = s.Total - s.Correct
	s.Accuracy = percent(s.Correct, s.Total)
	for name, stats := range s.PerAgent {
		stats.Accuracy = percent(stats.Correct, stats.Total)
		s.PerAgent[name] = stats
	}
	return s
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
