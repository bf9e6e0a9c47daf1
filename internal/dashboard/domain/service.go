package domain

import "context"

type Service interface {
	Stats(ctx context.Context) (Stats, error)
	RevenueChart(ctx context.Context, months int) (RevenueChart, error)
	CustomerGrowth(ctx context.Context, months int) (CustomerGrowth, error)
	PackageDistribution(ctx context.Context) (PackageDistribution, error)
	RecentActivities(ctx context.Context, limit int) (RecentActivities, error)
	OverdueSummary(ctx context.Context) (OverdueSummary, error)
}
