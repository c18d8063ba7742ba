package utils

import (
	"bufio"
	"github.com/twmb/murmur3"
	"os"
	"strings"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

// HashStrings hashes the parts as one stream, separating them so that
// ["ab", "c"] and ["a", "bc"] differ.
func HashStrings(ss ...string) uint64 {
	hash := murmur3.New64()
	for _, s := range ss {
		if _, err := hash.Write([]byte(s)); err != nil {
			panic(err)
		}
		if _, err := hash.Write([]byte{0}); err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

func ReadList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var result []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		result = append(result, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
