package mapper

import (
	"math"
	"strings"

	"github.com/qs3c/repoeval_go_server/internal/model/dto"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
)

// 测试目录
var testDirectoryPatterns = compileFullMatch([]string{
	`src/test/.*`,
	`.*/(test|tests|spec|specs|__tests__)/.*`,
	`.*/(integration-tests?|functional-tests?|acceptance-tests?|e2e|qa|itest|utest)/.*`,
})

// 各语言的测试文件命名惯例
var testFilePatterns = compileFullMatch([]string{
	// Java/Kotlin
	`.*(Test|Tests|TestCase|IT|Spec|Feature|Scenario)\.(java|kt)$`,
	`.*(Integration|Application|Unit|Functional|E2E|Performance|Load|Smoke|Acceptance|Regression|UITest).*Test\.(java|kt)$`,
	`.*(TestBase|TestUtils?|TestHelper|TestData|TestConfig|TestSuite)\.(java|kt)$`,

	// JavaScript/TypeScript
	`.*\.(test|spec|e2e-spec|integration|unit|browser)\.(js|ts|jsx|tsx)$`,

	// Python
	`test_.*\.py$`,
	`.*_test\.py$`,

	// Go
	`.*_test\.go$`,
	`.*_(integration|unit)_test\.go$`,

	// Ruby
	`.*_spec\.rb$`,

	// Rust
	`.*_test\.rs$`,
	`.*/tests\.rs$`,

	// C/C++
	`.*[Tt]est.*\.(c|cpp|cc|cxx|h|hpp)$`,

	// Dart
	`.*_test\.dart$`,

	// PHP / Swift / C#
	`.*Test\.(php|swift|cs)$`,

	// 其他
	`.*(Mock|Validator|Controller|Service|Repository|API|UI)Test\.(java|kt|ts|py|cs|php|swift)$`,
})

// 源码文件扩展名
var sourceFileExtensions = []string{
	".java", ".kt", ".scala", ".js", ".ts", ".jsx", ".tsx",
	".py", ".rb", ".go", ".rs", ".cpp", ".c", ".cs",
	".php", ".swift", ".m", ".mm", ".dart", ".h", ".hpp",
}

// MapTestInfo 填充测试特征
// 测试文件与源码文件互斥：已判定为测试的文件不计入源码数
func MapTestInfo(data *dto.RepositoryData, tree *github.Tree) {
	blobPaths := tree.BlobPaths()
	if len(blobPaths) == 0 {
		setEmptyTestData(data)
		return
	}

	data.HasTestDirectory = hasTestDirectory(tree.AllPaths())

	testFileCount := 0
	sourceFileCount := 0
	for _, path := range blobPaths {
		if isTestFile(path) {
			testFileCount++
		} else if isSourceFile(path) {
			sourceFileCount++
		}
	}
	data.TestFileCount = testFileCount
	data.SourceFileCount = sourceFileCount
	data.TestCoverageRatio = coverageRatio(testFileCount, sourceFileCount)
}

func setEmptyTestData(data *dto.RepositoryData) {
	data.HasTestDirectory = false
	data.TestFileCount = 0
	data.SourceFileCount = 0
	data.TestCoverageRatio = 0.0
}

func hasTestDirectory(allPaths []string) bool {
	for _, path := range allPaths {
		if matchAny(testDirectoryPatterns, path) {
			return true
		}
	}
	return false
}

// isTestFile 目录惯例或文件名惯例，命中其一即为测试文件
func isTestFile(path string) bool {
	return matchAny(testDirectoryPatterns, path) || matchAny(testFilePatterns, path)
}

func isSourceFile(path string) bool {
	for _, ext := range sourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// coverageRatio 测试文件数 / 源码文件数，保留 3 位小数；没有源码时为 0
func coverageRatio(testFileCount, sourceFileCount int) float64 {
	if sourceFileCount == 0 {
		return 0.0
	}
	ratio := float64(testFileCount) / float64(sourceFileCount)
	return math.Round(ratio*1000) / 1000
}
