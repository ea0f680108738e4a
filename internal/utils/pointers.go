package utils

func Float64Ptr(f float64) *float64 {
	return &f
}
