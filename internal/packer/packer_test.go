package packer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackRespectsWeightLimit(t *testing.T) {
	lines := []Line{
		NewLine(1, 2, 700),
		NewLine(2, 3, 300),
		NewLine(3, 1, 1200),
		NewLine(4, 6, 250),
	}

	packages, err := Pack(lines)
	require.NoError(t, err)
	require.NotEmpty(t, packages)

	for _, pkg := range packages {
		require.LessOrEqual(t, pkg.TotalWeightG, MaxPackageWeightG)

		// суммарный вес упаковки соответствует позициям
		total := 0
		for _, line := range pkg.Lines {
			total += line.TotalWeightG
		}
		require.Equal(t, total, pkg.TotalWeightG)
	}
}

func TestPackSplitsOversizedLine(t *testing.T) {
	// 3 x 700г = 2100г > 1800г: нарезка на 2+1,
	// упаковки 1400г и 700г
	packages, err := Pack([]Line{NewLine(1, 3, 700)})
	require.NoError(t, err)
	require.Len(t, packages, 2)
	require.Equal(t, 1400, packages[0].TotalWeightG)
	require.Equal(t, 700, packages[1].TotalWeightG)

	var totalQty int64
	for _, pkg := range packages {
		for _, line := range pkg.Lines {
			totalQty += line.Quantity
		}
	}
	require.Equal(t, int64(3), totalQty)
}

func TestPackSplitCompleteness(t *testing.T) {
	// 10 x 700г: floor(1800/700) = 2 единицы в упаковке,
	// ceil(10/2) = 5 частей
	packages, err := Pack([]Line{NewLine(1, 10, 700)})
	require.NoError(t, err)
	require.Len(t, packages, 5)

	var totalQty int64
	for _, pkg := range packages {
		require.LessOrEqual(t, pkg.TotalWeightG, MaxPackageWeightG)
		for _, line := range pkg.Lines {
			totalQty += line.Quantity
		}
	}
	require.Equal(t, int64(10), totalQty)
}

func TestPackOversizedUnit(t *testing.T) {
	// единица тяжелее лимита - упаковка невозможна
	_, err := Pack([]Line{NewLine(1, 1, 2000)})
	require.ErrorIs(t, err, ErrOversizedUnit)
}

func TestPackFirstFitDecreasing(t *testing.T) {
	// после сортировки: 1000, 800, 700.
	// 1000+800 = 1800 в первой упаковке, 700 во второй
	packages, err := Pack([]Line{
		NewLine(1, 1, 700),
		NewLine(2, 1, 1000),
		NewLine(3, 1, 800),
	})
	require.NoError(t, err)
	require.Len(t, packages, 2)
	require.Equal(t, 1800, packages[0].TotalWeightG)
	require.Equal(t, 700, packages[1].TotalWeightG)
}

func TestPackEmpty(t *testing.T) {
	packages, err := Pack(nil)
	require.NoError(t, err)
	require.Empty(t, packages)
}

func TestIsValidPackageWeight(t *testing.T) {
	require.True(t, IsValidPackageWeight(1800))
	require.False(t, IsValidPackageWeight(1801))
}
