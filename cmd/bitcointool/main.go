// bitcointool 密钥管理与交易签名命令行工具
//
// 针对比特币密钥/交易体系的单次调用式操作：从私钥推导公钥与地址、
// 生成新密钥、BIP32 分层确定性派生（支持一个数字范围表达式）、
// 以及对单个交易输入计算签名哈希并签名。
package main

func main() {
	Execute()
}
