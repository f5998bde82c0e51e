// Package hdwallet 提供 BIP32 分层确定性密钥的派生与展示
//
// 包含两部分：
//   - 派生路径范围展开：把形如 m/0'/[0-4]/1 的路径表达式展开为若干条具体路径；
//   - 基于 btcd/btcutil/hdkeychain 的主密钥生成、子密钥派生与节点打印。
package hdwallet

import (
	"strconv"
	"strings"
)

const (
	// maxPathScan 路径表达式的扫描上限（超出部分不参与范围识别）
	maxPathScan = 1024

	// maxRangeDigits 范围数字的最大十进制位数
	maxRangeDigits = 8
)

// ExpandPathRange 展开路径表达式中的数字范围标记
//
// 从左到右单次扫描，遇到的第一个 '[' 或 '(' 作为候选范围标记的起点，
// 标记格式为 [from-to] 或 (from-to)，from/to 均为不超过 8 位的十进制数。
// 合法标记且 from <= to 时，返回 from..to（含端点）逐一代入后的路径序列，
// 标记前后的内容原样保留。
//
// 宽松回退：没有标记、标记残缺、数字超长、或 from > to 时，
// 均返回仅含原始表达式的单元素序列，不报错。
func ExpandPathRange(keypath string) []string {
	posA := -1 // from 起始下标（开括号之后）
	posB := -1 // to 起始下标（'-' 之后）
	end := -1  // 闭括号之后的下标
	var from, to uint64

scan:
	for i := 0; i < len(keypath); i++ {
		if i > maxPathScan {
			break
		}
		c := keypath[i]

		switch {
		case posA > -1 && posB == -1:
			// 正在累积 from
			if c == '-' {
				if i-posA > maxRangeDigits {
					break scan
				}
				from = parseRangeNumeral(keypath[posA:i])
				posB = i + 1
			} else if c < '0' || c > '9' {
				posA = -1
				break scan
			}
			continue

		case posA > -1 && posB > -1:
			// 正在累积 to
			if c == ']' || c == ')' {
				if i-posB > maxRangeDigits {
					break scan
				}
				to = parseRangeNumeral(keypath[posB:i])
				end = i + 1
				break scan
			} else if c < '0' || c > '9' {
				posA = -1
				posB = -1
				break scan
			}
			continue
		}

		if c == '[' || c == '(' {
			posA = i + 1
		}
	}

	if end > -1 && from <= to {
		prefix := keypath[:posA-1]
		suffix := keypath[end:]
		out := make([]string, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, prefix+strconv.FormatUint(i, 10)+suffix)
		}
		return out
	}

	// 无合法范围标记：整体按字面路径处理
	return []string{keypath}
}

// parseRangeNumeral 解析范围数字，空串按 0 处理
func parseRangeNumeral(s string) uint64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parsePath 把 BIP32 路径字符串解析为子索引序列
//
// 支持 m/0'/1/2h 形式：' 或 h/H 后缀表示硬化派生。
// 仅含 "m" 的路径返回空序列（即主密钥本身）。
func parsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "m" || path == "M" {
		return nil, nil
	}
	path = strings.TrimPrefix(path, "m/")
	path = strings.TrimPrefix(path, "M/")
	if path == "" {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	indexes := make([]uint32, 0, len(parts))
	for _, part := range parts {
		hardened := false
		switch {
		case strings.HasSuffix(part, "'"):
			hardened = true
			part = strings.TrimSuffix(part, "'")
		case strings.HasSuffix(part, "h"), strings.HasSuffix(part, "H"):
			hardened = true
			part = part[:len(part)-1]
		}

		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, &PathComponentError{Component: part, Err: err}
		}
		if n >= hardenedKeyStart {
			return nil, &PathComponentError{Component: part, Err: errIndexTooLarge}
		}

		idx := uint32(n)
		if hardened {
			idx += hardenedKeyStart
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}
