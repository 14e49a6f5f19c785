package detector

// MaxRiskScore caps the composite score.
const MaxRiskScore = 100

// capScore clamps the summed points into [0, MaxRiskScore].
func capScore(total int) int {
	switch {
	case total > MaxRiskScore:
		return MaxRiskScore
	case total < 0:
		return 0
	default:
		return total
	}
}

// LevelFor maps a capped risk score to its risk level.
func LevelFor(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	case score >= 10:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// Recommendations returns the advisory messages for a risk score band.
// The returned slice always has three entries and is safe to modify.
func Recommendations(score int) []string {
	switch {
	case score >= 50:
		return []string{
			"🚨 DO NOT visit this URL or enter any personal information",
			"🔒 This URL shows multiple high-risk indicators",
			"📞 Report this URL to your IT security team if received via email",
		}
	case score >= 30:
		return []string{
			"⚠️ Exercise extreme caution with this URL",
			"🔍 Verify the URL through official channels",
			"🛡️ Use additional security tools before visiting",
		}
	case score >= 10:
		return []string{
			"⚡ Be cautious and verify the source",
			"🔒 Ensure HTTPS is used and certificate is valid",
			"👀 Double-check the domain spelling",
		}
	default:
		return []string{
			"✅ URL appears relatively safe",
			"🔒 Always verify HTTPS and certificates",
			"🛡️ Remain vigilant for any suspicious behavior",
		}
	}
}
