// Package starttx 实现“在指定枪口发起充电交易”的工作流控制器。
//
// 控制器是一个显式状态机：
//
//	Checking -> ActorSelection -> (UserSelection) -> TagResolution -> Confirmation -> Submitting
//	         -> Completed | Failed | Aborted
//
// 每次 Initiate 独立运行，只持有入参快照，不保存跨调用状态；
// 两次并发调用互不感知，可能在远程网关处竞争（不做去重）。
// 挂起点只有选择框、用户选择框、确认框以及远程提交，均通过协作者接口的阻塞调用表达，
// 调用方需要异步时自行在 goroutine 中运行。
package starttx
